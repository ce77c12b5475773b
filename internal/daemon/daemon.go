// Package daemon holds the process-level plumbing for the long-running
// monitor: a pidfile for status reporting and an advisory file lock that
// keeps a second instance from fighting over the same directories.
package daemon

import (
	"os"
	"path/filepath"
)

// RuntimeDir returns the directory holding the pidfile and instance lock.
// Prefers the session runtime directory, falling back to the user state
// directory so the paths still work outside a systemd session.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "appimgmon")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "appimgmon")
	}
	return filepath.Join(home, ".local", "state", "appimgmon")
}

// DefaultPIDPath returns the pidfile location.
func DefaultPIDPath() string {
	return filepath.Join(RuntimeDir(), "appimgmon.pid")
}

// DefaultLockPath returns the instance-lock location.
func DefaultLockPath() string {
	return filepath.Join(RuntimeDir(), "appimgmon.lock")
}
