package icon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
	"github.com/abcdqfr/AppImgMon/internal/config"
)

// ErrNoIcon reports that extraction succeeded but no candidate matched.
var ErrNoIcon = errors.New("no icon found in bundle")

// Resolver finds or extracts an icon for a bundle and installs it at the
// canonical icon-directory path.
//
// Resolve never fails upward: the returned reference is always usable in a
// launcher entry. A non-nil error explains why the reference is the
// symbolic fallback instead of a bundle-specific icon.
type Resolver struct {
	cfg       *config.Config
	extractor *Extractor
	log       *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg *config.Config, log *slog.Logger) *Resolver {
	return &Resolver{
		cfg:       cfg,
		extractor: NewExtractor(cfg.ExtractTimeoutDuration(), log),
		log:       log,
	}
}

// CanonicalPath returns where an installed icon for appName lives. Icons
// keep the .png name regardless of source format; desktop environments
// sniff the content.
func (r *Resolver) CanonicalPath(appName string) string {
	return filepath.Join(r.cfg.IconDir, appName+".png")
}

// Resolve returns an icon reference for a bundle: an already-installed
// icon, an icon found inside the bundle and copied to the canonical path,
// or the symbolic fallback.
func (r *Resolver) Resolve(ctx context.Context, b bundle.Bundle) (string, error) {
	// Reuse an icon installed earlier, formats in priority order. This
	// path must not touch the bundle at all.
	for _, format := range Formats {
		existing := filepath.Join(r.cfg.IconDir, b.Name+format)
		if isFile(existing) {
			return existing, nil
		}
	}

	root, cleanup, err := r.extractor.Extract(ctx, b.Path)
	if err != nil {
		return Fallback, err
	}
	defer cleanup()

	src, ok := firstExisting(root, namedCandidates(b.Name))
	if !ok {
		src, ok = firstExisting(root, genericCandidates(b.Name))
	}
	if !ok {
		return Fallback, fmt.Errorf("%w: %s", ErrNoIcon, b.Path)
	}

	target := r.CanonicalPath(b.Name)
	if err := copyFile(src, target); err != nil {
		return Fallback, fmt.Errorf("failed to install icon for %s: %w", b.Name, err)
	}
	r.log.Info("icon installed",
		slog.String("source", src),
		slog.String("icon", target))
	return target, nil
}

// firstExisting returns the first relative candidate that exists as a file
// under root.
func firstExisting(root string, candidates []string) (string, bool) {
	for _, rel := range candidates {
		path := filepath.Join(root, rel)
		if isFile(path) {
			return path, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
