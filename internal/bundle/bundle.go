// Package bundle identifies AppImage bundles in the watch directory.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Suffix is the file extension that marks a bundle. Matching is
// case-sensitive: Foo.appimage is not a bundle.
const Suffix = ".AppImage"

// Bundle is a single AppImage file in the watch directory.
type Bundle struct {
	// Path is the absolute path to the bundle file.
	Path string
	// Name is the application name, the file name with the suffix removed.
	Name string
}

// IsAppImage reports whether the path names a bundle. A file called exactly
// ".AppImage" has an empty application name and is not a bundle.
func IsAppImage(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, Suffix) && base != Suffix
}

// FromPath builds a Bundle from a path. Callers must have checked
// IsAppImage first.
func FromPath(path string) Bundle {
	return Bundle{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), Suffix),
	}
}

// List scans dir (flat, no recursion) and returns the bundles it contains,
// sorted by name. Directories and dangling symlinks are skipped.
func List(dir string) ([]Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read watch directory %s: %w", dir, err)
	}

	var bundles []Bundle
	for _, e := range entries {
		if !IsAppImage(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		bundles = append(bundles, FromPath(path))
	}

	sort.Slice(bundles, func(i, j int) bool {
		return bundles[i].Name < bundles[j].Name
	})
	return bundles, nil
}
