// Package reconcile is the synchronization engine: given what is present in
// the watch directory and what was known before, it decides which launcher
// entries to create, refresh, or delete, and drives the desktop and icon
// packages accordingly. Both change-detection front ends (interval scans and
// filesystem events) reduce to calls on the Reconciler.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
	"github.com/abcdqfr/AppImgMon/internal/config"
	"github.com/abcdqfr/AppImgMon/internal/desktop"
	"github.com/abcdqfr/AppImgMon/internal/icon"
	"github.com/abcdqfr/AppImgMon/internal/watcher"
)

// entryWriter is the slice of desktop.Writer the reconciler drives.
type entryWriter interface {
	Write(ctx context.Context, b bundle.Bundle) (desktop.Entry, error)
	IsStale(b bundle.Bundle) bool
}

// orphanSweeper is the slice of desktop.Sweeper the reconciler drives.
type orphanSweeper interface {
	Sweep() []string
}

// Reconciler applies bundle changes to the launcher-entry state. All
// per-bundle failures are logged and contained here; a broken bundle never
// aborts the rest of a pass.
type Reconciler struct {
	cfg     *config.Config
	writer  entryWriter
	sweeper orphanSweeper
	log     *slog.Logger
}

// New creates a reconciler wired to the real entry writer, icon resolver, and
// orphan sweeper.
func New(cfg *config.Config, log *slog.Logger) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		writer:  desktop.NewWriter(cfg, icon.NewResolver(cfg, log), log),
		sweeper: desktop.NewSweeper(cfg, log),
		log:     log,
	}
}

// EnsureDirs creates every managed directory. Startup treats a failure as
// fatal; passes call it again to heal directories removed at runtime.
func (r *Reconciler) EnsureDirs() error {
	for _, dir := range r.cfg.ManagedDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Full reconciles the bundles currently present against the previously known
// set. New bundles get an entry unconditionally, surviving bundles only when
// their entry went stale, and any removals trigger exactly one orphan sweep
// after the batch. Returns current, which the caller keeps as the next
// previous.
func (r *Reconciler) Full(ctx context.Context, current, previous bundle.Set) bundle.Set {
	added, removed, common := current.Diff(previous)

	for _, b := range added {
		r.write(ctx, b)
	}

	for _, b := range common {
		if r.writer.IsStale(b) {
			r.log.Info("bundle changed, refreshing entry",
				slog.String("bundle", b.Path))
			r.write(ctx, b)
		}
	}

	if len(removed) > 0 {
		r.Sweep()
	}

	return current
}

// Scan lists the watch directory and runs a full pass against previous,
// healing managed directories first. On a scan failure the old baseline is
// returned so a transient error does not replay every bundle as new on the
// next tick.
func (r *Reconciler) Scan(ctx context.Context, previous bundle.Set) bundle.Set {
	if err := r.EnsureDirs(); err != nil {
		r.log.Error("failed to ensure managed directories",
			slog.String("error", err.Error()))
		return previous
	}

	bundles, err := bundle.List(r.cfg.WatchDir)
	if err != nil {
		r.log.Error("failed to scan watch directory",
			slog.String("dir", r.cfg.WatchDir),
			slog.String("error", err.Error()))
		return previous
	}

	return r.Full(ctx, bundle.NewSet(bundles...), previous)
}

// Event applies a single change notice from the event driver.
func (r *Reconciler) Event(ctx context.Context, ev watcher.FileEvent) {
	r.Batch(ctx, []watcher.FileEvent{ev})
}

// Batch applies one debounced batch of change notices. Creations write
// unconditionally, modifications only when stale, and any number of
// deletions or renames in the batch collapse into one orphan sweep. A moved
// or deleted bundle is handled by the sweep rather than a targeted delete
// because another bundle may share its derived name.
func (r *Reconciler) Batch(ctx context.Context, events []watcher.FileEvent) {
	if err := r.EnsureDirs(); err != nil {
		r.log.Error("failed to ensure managed directories",
			slog.String("error", err.Error()))
	}

	needSweep := false
	for _, ev := range events {
		switch ev.Operation {
		case watcher.OpCreate:
			r.write(ctx, bundle.FromPath(ev.Path))
		case watcher.OpModify:
			b := bundle.FromPath(ev.Path)
			if r.writer.IsStale(b) {
				r.log.Info("bundle changed, refreshing entry",
					slog.String("bundle", b.Path))
				r.write(ctx, b)
			}
		case watcher.OpDelete, watcher.OpRename:
			needSweep = true
		}
	}

	if needSweep {
		r.Sweep()
	}
}

// Sweep removes launcher entries whose bundle no longer exists and returns
// the removed entry paths.
func (r *Reconciler) Sweep() []string {
	return r.sweeper.Sweep()
}

func (r *Reconciler) write(ctx context.Context, b bundle.Bundle) {
	if _, err := r.writer.Write(ctx, b); err != nil {
		r.log.Error("failed to write launcher entry",
			slog.String("bundle", b.Path),
			slog.String("error", err.Error()))
	}
}
