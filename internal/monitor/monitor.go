// Package monitor runs the long-lived synchronization loop. It owns the
// single-instance lock and pid file, performs the startup pass, and drives
// the reconciler from one of two change sources: debounced filesystem events
// or a fixed-interval scan. Mode "auto" prefers events and falls back to
// scanning when filesystem notifications are unavailable.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
	"github.com/abcdqfr/AppImgMon/internal/config"
	"github.com/abcdqfr/AppImgMon/internal/daemon"
	"github.com/abcdqfr/AppImgMon/internal/reconcile"
	"github.com/abcdqfr/AppImgMon/internal/watcher"
)

// Monitor wires the reconciler to a change-detection driver and manages the
// process-level runtime state around it.
type Monitor struct {
	cfg     *config.Config
	log     *slog.Logger
	rec     *reconcile.Reconciler
	lock    *daemon.Lock
	pidFile *daemon.PIDFile

	// For testing: override watcher construction
	newWatcher func() (watcher.Watcher, error)
}

// New creates a monitor for the given configuration.
func New(cfg *config.Config, log *slog.Logger) *Monitor {
	m := &Monitor{
		cfg:     cfg,
		log:     log,
		rec:     reconcile.New(cfg, log),
		lock:    daemon.NewLock(daemon.DefaultLockPath()),
		pidFile: daemon.NewPIDFile(daemon.DefaultPIDPath()),
	}
	m.newWatcher = func() (watcher.Watcher, error) {
		return watcher.NewFsnotifyWatcher(watcher.Options{
			DebounceWindow: cfg.DebounceWindowDuration(),
		}.WithDefaults(), log)
	}
	return m
}

// Run executes the monitor until the context is cancelled. It refuses to
// start when another instance already holds the lock, and treats a failure
// to create the managed directories as fatal.
func (m *Monitor) Run(ctx context.Context) error {
	held, err := m.lock.TryAcquire()
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !held {
		return fmt.Errorf("another instance is already running (lock held at %s)", m.lock.Path())
	}
	defer func() { _ = m.lock.Release() }()

	if err := m.pidFile.Write(); err != nil {
		m.log.Warn("failed to write pid file",
			slog.String("path", m.pidFile.Path()),
			slog.String("error", err.Error()))
	}
	defer func() { _ = m.pidFile.Remove() }()

	if err := m.rec.EnsureDirs(); err != nil {
		return err
	}

	m.log.Info("monitor started",
		slog.String("dir", m.cfg.WatchDir),
		slog.String("mode", m.cfg.WatchMode))

	// Startup pass: entries for every bundle present now, then one sweep
	// for entries whose bundle disappeared while the monitor was down.
	prev := m.rec.Scan(ctx, nil)
	m.rec.Sweep()

	var runErr error
	switch m.cfg.WatchMode {
	case config.WatchModeEvents:
		w, err := m.newWatcher()
		if err != nil {
			return fmt.Errorf("failed to initialize event watcher: %w", err)
		}
		runErr = m.runEvents(ctx, w)
	case config.WatchModePolling:
		m.runScanLoop(ctx, prev)
	default:
		if w, err := m.newWatcher(); err != nil {
			m.log.Warn("filesystem events unavailable, falling back to interval scanning",
				slog.String("error", err.Error()))
			m.runScanLoop(ctx, prev)
		} else {
			runErr = m.runEvents(ctx, w)
		}
	}
	if runErr != nil {
		return runErr
	}

	m.log.Info("monitor stopped")
	return nil
}

// runEvents consumes debounced event batches until the context is cancelled.
// Cancellation is the one expected way out, so it does not count as a watcher
// failure.
func (m *Monitor) runEvents(ctx context.Context, w watcher.Watcher) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.Start(gCtx, m.cfg.WatchDir)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("event watcher failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case batch, ok := <-w.Events():
				if !ok {
					return nil
				}
				m.rec.Batch(gCtx, batch)
			case err, ok := <-w.Errors():
				if !ok {
					return nil
				}
				m.log.Warn("watch error", slog.String("error", err.Error()))
			}
		}
	})

	return g.Wait()
}

// runScanLoop reconciles on a fixed interval until the context is cancelled.
// Each tick is a complete pass: directory healing, a full scan against the
// retained baseline, and an orphan sweep when bundles were removed.
func (m *Monitor) runScanLoop(ctx context.Context, prev bundle.Set) {
	interval := m.cfg.PollIntervalDuration()
	m.log.Info("interval scanning started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev = m.rec.Scan(ctx, prev)
		}
	}
}
