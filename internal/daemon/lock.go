package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is the single-instance guard: an advisory file lock held for the
// monitor's whole lifetime. A second monitor pointed at the same directories
// would race the first one's writes and sweeps, so it must refuse to start.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewLock creates an instance lock at the given path.
func NewLock(path string) *Lock {
	return &Lock{
		path:  path,
		flock: flock.New(path),
	}
}

// TryAcquire attempts to take the lock without blocking. Returns false when
// another monitor already holds it.
func (l *Lock) TryAcquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release instance lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
