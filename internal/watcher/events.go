package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
)

// FsnotifyWatcher is the event-driven change source: a flat inotify
// subscription on the watch directory, filtered to bundle files and debounced.
type FsnotifyWatcher struct {
	fsw            *fsnotify.Watcher
	debouncer      *Debouncer
	events         chan []FileEvent
	errors         chan error
	stopCh         chan struct{}
	dir            string
	opts           Options
	log            *slog.Logger
	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

var _ Watcher = (*FsnotifyWatcher)(nil)

// NewFsnotifyWatcher creates an inotify-backed watcher. An error here means
// the event mechanism is unavailable and the caller should fall back to
// interval scanning.
func NewFsnotifyWatcher(opts Options, log *slog.Logger) (*FsnotifyWatcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem notifications: %w", err)
	}

	return &FsnotifyWatcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
		log:       log,
	}, nil
}

// Start subscribes to the directory and runs the event loop until Stop is
// called or the context is cancelled. The watch is flat: bundles live directly
// in the watch directory, subdirectories are not descended into.
func (w *FsnotifyWatcher) Start(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve watch directory: %w", err)
	}
	w.dir = absDir

	if err := w.fsw.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absDir, err)
	}

	go w.forwardDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// handle filters and converts one raw fsnotify event.
func (w *FsnotifyWatcher) handle(event fsnotify.Event) {
	if !bundle.IsAppImage(event.Name) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		// A directory named like a bundle is not a bundle.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return
		}
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod carries no synchronization work.
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      event.Name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// forwardDebounced moves coalesced batches to the output channel.
func (w *FsnotifyWatcher) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(batch) == 0 {
				continue
			}
			w.emitBatch(batch)
		}
	}
}

// emitBatch sends a batch to the output channel without blocking the event
// loop. The read lock excludes Stop, so the channel cannot close mid-send.
func (w *FsnotifyWatcher) emitBatch(batch []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.events <- batch:
	default:
		count := w.droppedBatches.Add(1)
		w.log.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(batch)),
			slog.Uint64("total_dropped_batches", count))
	}
}

// emitError sends a non-fatal error to the error channel.
func (w *FsnotifyWatcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases the inotify subscription.
func (w *FsnotifyWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	_ = w.fsw.Close()
	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel of debounced event batches.
func (w *FsnotifyWatcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal watch errors.
func (w *FsnotifyWatcher) Errors() <-chan error {
	return w.errors
}
