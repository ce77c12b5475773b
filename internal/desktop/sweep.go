package desktop

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abcdqfr/AppImgMon/internal/config"
)

// sweepCacheSize bounds the parsed-provenance cache. Launcher entry counts
// are human scale; 256 covers any realistic applications directory.
const sweepCacheSize = 256

// Sweeper deletes launcher entries whose recorded bundle no longer exists.
//
// Parsed provenance is cached in an LRU keyed by entry path and invalidated
// by mtime+size, so repeated sweeps do not re-read unchanged entry files.
// The bundle existence check itself runs fresh on every sweep.
type Sweeper struct {
	cfg   *config.Config
	log   *slog.Logger
	cache *lru.Cache[string, sweepCacheEntry]
}

type sweepCacheEntry struct {
	modTime    time.Time
	size       int64
	bundlePath string
}

// NewSweeper creates a Sweeper.
func NewSweeper(cfg *config.Config, log *slog.Logger) *Sweeper {
	cache, _ := lru.New[string, sweepCacheEntry](sweepCacheSize)
	return &Sweeper{cfg: cfg, log: log, cache: cache}
}

// Sweep scans the primary and shortcut locations and removes orphaned
// entries. Entries without a recorded bundle path are left untouched; they
// were not generated here. Returns the paths that were deleted.
func (s *Sweeper) Sweep() []string {
	dirs := []string{s.cfg.ApplicationsDir}
	if s.cfg.DesktopDir != "" && s.cfg.DesktopDir != s.cfg.ApplicationsDir {
		dirs = append(dirs, s.cfg.DesktopDir)
	}

	var removed []string
	for _, dir := range dirs {
		removed = append(removed, s.sweepDir(dir)...)
	}
	return removed
}

func (s *Sweeper) sweepDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to scan entry directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
		}
		return nil
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileSuffix) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		bundlePath, ok := s.provenancePath(path)
		if !ok || bundlePath == "" {
			continue
		}
		if bundleExists(bundlePath) {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to remove orphaned entry",
				slog.String("entry", path),
				slog.String("error", err.Error()))
			continue
		}
		s.cache.Remove(path)
		s.log.Info("orphaned entry removed",
			slog.String("entry", path),
			slog.String("bundle", bundlePath))
		removed = append(removed, path)
	}
	return removed
}

// provenancePath returns the recorded bundle path for an entry file,
// reading from the cache when the file is unchanged since the last sweep.
func (s *Sweeper) provenancePath(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if cached, ok := s.cache.Get(path); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.bundlePath, true
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("failed to read entry during sweep",
			slog.String("entry", path),
			slog.String("error", err.Error()))
		return "", false
	}

	bundlePath := ParseProvenance(content).BundlePath
	s.cache.Add(path, sweepCacheEntry{
		modTime:    info.ModTime(),
		size:       info.Size(),
		bundlePath: bundlePath,
	})
	return bundlePath, true
}

// bundleExists reports whether anything sits at path. Only a confident
// not-exist answer counts as absent; a permission error keeps the entry.
func bundleExists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	return !os.IsNotExist(err)
}
