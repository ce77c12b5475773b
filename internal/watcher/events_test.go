package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startTestWatcher(t *testing.T) (*FsnotifyWatcher, string) {
	t.Helper()
	dir := t.TempDir()

	w, err := NewFsnotifyWatcher(Options{
		DebounceWindow:  50 * time.Millisecond,
		EventBufferSize: 100,
	}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		_ = w.Start(ctx, dir)
	}()

	// Wait for the subscription to register
	time.Sleep(100 * time.Millisecond)
	return w, dir
}

// waitForOp drains batches until an event for the named bundle with the given
// operation arrives, or the timeout expires.
func waitForOp(t *testing.T, w *FsnotifyWatcher, name string, op Operation) bool {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case batch := <-w.Events():
			for _, e := range batch {
				if filepath.Base(e.Path) == name && e.Operation == op {
					return true
				}
			}
		case err := <-w.Errors():
			t.Fatalf("unexpected watch error: %v", err)
		case <-timeout:
			return false
		}
	}
}

func TestFsnotifyWatcher_DetectsBundleCreation(t *testing.T) {
	// Given: a running watcher on an empty directory
	w, dir := startTestWatcher(t)

	// When: a bundle file is created
	path := filepath.Join(dir, "New.AppImage")
	require.NoError(t, os.WriteFile(path, []byte("bundle"), 0o755))

	// Then: a CREATE event arrives with the absolute path
	assert.True(t, waitForOp(t, w, "New.AppImage", OpCreate),
		"expected CREATE event for New.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_DetectsBundleModification(t *testing.T) {
	// Given: a running watcher over an existing bundle
	w, dir := startTestWatcher(t)
	path := filepath.Join(dir, "Existing.AppImage")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o755))

	// Drain the creation batch first
	waitForOp(t, w, "Existing.AppImage", OpCreate)

	// When: the bundle content changes
	require.NoError(t, os.WriteFile(path, []byte("v2 with more bytes"), 0o755))

	// Then: a MODIFY event arrives
	assert.True(t, waitForOp(t, w, "Existing.AppImage", OpModify),
		"expected MODIFY event for Existing.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_DetectsBundleDeletion(t *testing.T) {
	// Given: a running watcher over an existing bundle
	w, dir := startTestWatcher(t)
	path := filepath.Join(dir, "Doomed.AppImage")
	require.NoError(t, os.WriteFile(path, []byte("bundle"), 0o755))
	waitForOp(t, w, "Doomed.AppImage", OpCreate)

	// When: the bundle is deleted
	require.NoError(t, os.Remove(path))

	// Then: a DELETE event arrives
	assert.True(t, waitForOp(t, w, "Doomed.AppImage", OpDelete),
		"expected DELETE event for Doomed.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_DetectsBundleMovedAway(t *testing.T) {
	// Given: a running watcher over an existing bundle
	w, dir := startTestWatcher(t)
	path := filepath.Join(dir, "Roaming.AppImage")
	require.NoError(t, os.WriteFile(path, []byte("bundle"), 0o755))
	waitForOp(t, w, "Roaming.AppImage", OpCreate)

	// When: the bundle is moved out of the watch directory
	outside := filepath.Join(t.TempDir(), "Roaming.AppImage")
	require.NoError(t, os.Rename(path, outside))

	// Then: a RENAME event arrives for the old path
	assert.True(t, waitForOp(t, w, "Roaming.AppImage", OpRename),
		"expected RENAME event for Roaming.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_IgnoresOtherFiles(t *testing.T) {
	// Given: a running watcher
	w, dir := startTestWatcher(t)

	// When: a non-bundle file and a bundle are created
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Real.AppImage"), []byte("x"), 0o755))

	// Then: only bundle events are delivered
	timeout := time.After(2 * time.Second)
	var sawBundle bool
loop:
	for {
		select {
		case batch := <-w.Events():
			for _, e := range batch {
				assert.Equal(t, ".AppImage", filepath.Ext(e.Path),
					"should not receive events for non-bundle files")
				if filepath.Base(e.Path) == "Real.AppImage" {
					sawBundle = true
					break loop
				}
			}
		case <-timeout:
			break loop
		}
	}

	assert.True(t, sawBundle, "expected event for Real.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_IgnoresDirectories(t *testing.T) {
	// Given: a running watcher
	w, dir := startTestWatcher(t)

	// When: a directory with a bundle-like name appears, then a real bundle
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Fake.AppImage"), 0o755))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Real.AppImage"), []byte("x"), 0o755))

	// Then: no event for the directory is delivered
	timeout := time.After(2 * time.Second)
	var sawReal bool
loop:
	for {
		select {
		case batch := <-w.Events():
			for _, e := range batch {
				assert.NotEqual(t, "Fake.AppImage", filepath.Base(e.Path),
					"directories must not produce events")
				if filepath.Base(e.Path) == "Real.AppImage" {
					sawReal = true
					break loop
				}
			}
		case <-timeout:
			break loop
		}
	}

	assert.True(t, sawReal, "expected event for Real.AppImage")
	require.NoError(t, w.Stop())
}

func TestFsnotifyWatcher_Stop_ClosesChannels(t *testing.T) {
	// Given: a watcher
	w, err := NewFsnotifyWatcher(DefaultOptions(), testLogger())
	require.NoError(t, err)

	// When: stopped twice
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	// Then: the events channel is closed
	select {
	case _, ok := <-w.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for channel close")
	}
}
