package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
	"github.com/abcdqfr/AppImgMon/internal/config"
	"github.com/abcdqfr/AppImgMon/internal/metadata"
)

// IconResolver resolves an icon reference for a bundle. Implementations
// must always return a usable reference; a non-nil error explains why the
// reference is a fallback rather than a bundle-specific icon.
type IconResolver interface {
	Resolve(ctx context.Context, b bundle.Bundle) (string, error)
}

// Writer renders launcher entries and writes them to the primary location,
// plus the optional desktop shortcut copy.
type Writer struct {
	cfg   *config.Config
	icons IconResolver
	log   *slog.Logger
}

// NewWriter creates a Writer.
func NewWriter(cfg *config.Config, icons IconResolver, log *slog.Logger) *Writer {
	return &Writer{cfg: cfg, icons: icons, log: log}
}

// EntryPath returns the primary entry location for an application name.
func (w *Writer) EntryPath(appName string) string {
	return EntryPath(w.cfg.ApplicationsDir, appName)
}

// ShortcutPath returns the desktop shortcut location for an application
// name.
func (w *Writer) ShortcutPath(appName string) string {
	return EntryPath(w.cfg.DesktopDir, appName)
}

// Write renders and writes the launcher entry for a bundle. A returned
// error is a hard failure for this one bundle; the caller logs it and moves
// on so one bad bundle never aborts a reconciliation pass. A shortcut copy
// failure is soft: logged here, primary entry remains authoritative.
func (w *Writer) Write(ctx context.Context, b bundle.Bundle) (Entry, error) {
	fp, err := metadata.Compute(b.Path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to fingerprint %s: %w", b.Path, err)
	}

	iconRef, iconErr := w.icons.Resolve(ctx, b)
	if iconErr != nil {
		w.log.Warn("using fallback icon",
			slog.String("bundle", b.Path),
			slog.String("error", iconErr.Error()))
	}

	entry := Entry{
		Name:       b.Name,
		BundlePath: b.Path,
		Icon:       iconRef,
		Hash:       fp.Hash,
		UpdatedAt:  fp.ModTime,
	}
	content := entry.Render()

	primary := w.EntryPath(b.Name)
	if err := writeEntryFile(primary, content); err != nil {
		return Entry{}, err
	}
	w.log.Info("launcher entry written",
		slog.String("entry", primary),
		slog.String("bundle", b.Path),
		slog.String("hash", fp.Hash))

	if w.cfg.DesktopShortcuts {
		shortcut := w.ShortcutPath(b.Name)
		if err := writeEntryFile(shortcut, content); err != nil {
			w.log.Warn("failed to write desktop shortcut",
				slog.String("shortcut", shortcut),
				slog.String("error", err.Error()))
		} else if err := ValidateFile(shortcut); err != nil {
			w.log.Warn("desktop shortcut failed validation",
				slog.String("shortcut", shortcut),
				slog.String("error", err.Error()))
		}
	}

	return entry, nil
}

// IsStale reports whether the primary entry for b is missing or no longer
// matches the bundle. Unreadable entries and fingerprint failures both read
// as stale so the write path gets a chance to repair them.
func (w *Writer) IsStale(b bundle.Bundle) bool {
	content, err := os.ReadFile(w.EntryPath(b.Name))
	if err != nil {
		return true
	}
	fp, err := metadata.Compute(b.Path)
	if err != nil {
		return true
	}
	return metadata.IsStale(ParseProvenance(content).Recorded(), fp)
}

// writeEntryFile writes content and forces the entry mode. WriteFile only
// applies the mode on create, so overwrites need the explicit chmod.
func writeEntryFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, EntryMode); err != nil {
		return fmt.Errorf("failed to write launcher entry %s: %w", path, err)
	}
	if err := os.Chmod(path, EntryMode); err != nil {
		return fmt.Errorf("failed to set mode on launcher entry %s: %w", path, err)
	}
	return nil
}
