package icon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// treeName is the directory an AppImage's self-extraction creates under the
// working directory.
const treeName = "squashfs-root"

// Extractor runs a bundle's --appimage-extract into a private scratch
// directory.
type Extractor struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewExtractor creates an Extractor. timeout bounds a single extraction
// subprocess; expiry counts as extraction failure.
func NewExtractor(timeout time.Duration, log *slog.Logger) *Extractor {
	return &Extractor{timeout: timeout, log: log}
}

// Extract runs the bundle's self-extraction and returns the root of the
// extracted tree plus a cleanup func that removes the whole scratch
// directory. On error the scratch directory is already removed and no
// cleanup is returned. Each call gets a fresh scratch directory, so
// concurrent extractions cannot collide.
func (e *Extractor) Extract(ctx context.Context, bundlePath string) (string, func(), error) {
	scratch, err := os.MkdirTemp("", "appimgmon-extract-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create extraction scratch dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(scratch); err != nil {
			e.log.Error("failed to clean up extraction scratch dir",
				slog.String("dir", scratch),
				slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bundlePath, "--appimage-extract")
	cmd.Dir = scratch
	runErr := cmd.Run()

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		cleanup()
		return "", nil, fmt.Errorf("extraction of %s timed out after %s", bundlePath, e.timeout)
	}

	// A nonzero exit with a usable tree still counts: some bundles exit
	// unhappily after extracting everything.
	root := filepath.Join(scratch, treeName)
	if _, statErr := os.Stat(root); statErr != nil {
		cleanup()
		if runErr != nil {
			return "", nil, fmt.Errorf("extraction of %s failed: %w", bundlePath, runErr)
		}
		return "", nil, fmt.Errorf("extraction of %s produced no %s tree", bundlePath, treeName)
	}

	return root, cleanup, nil
}
