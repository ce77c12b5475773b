package daemon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_TryAcquire(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "instance.lock")

	l := NewLock(lockPath)
	acquired, err := l.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, l.Release())
}

func TestLock_SecondHolderRefused(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "instance.lock")

	first := NewLock(lockPath)
	acquired, err := first.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)
	defer func() { _ = first.Release() }()

	second := NewLock(lockPath)
	acquired, err = second.TryAcquire()
	require.NoError(t, err)
	assert.False(t, acquired, "second holder should be refused while the first holds the lock")
}

func TestLock_ReacquireAfterRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "instance.lock")

	first := NewLock(lockPath)
	acquired, err := first.TryAcquire()
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, first.Release())

	second := NewLock(lockPath)
	acquired, err = second.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired, "lock should be free after release")
	require.NoError(t, second.Release())
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	l := NewLock(filepath.Join(t.TempDir(), "instance.lock"))
	require.NoError(t, l.Release())
}

func TestLock_CreatesParentDirectory(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "sub", "dir", "instance.lock")

	l := NewLock(lockPath)
	acquired, err := l.TryAcquire()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, l.Release())
}

func TestRuntimeDir_PrefersSessionRuntime(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/appimgmon", RuntimeDir())
}

func TestRuntimeDir_FallsBackToStateDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	dir := RuntimeDir()
	assert.Contains(t, dir, "appimgmon")
	assert.NotContains(t, dir, "/run/user")
}
