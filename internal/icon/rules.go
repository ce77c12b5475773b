// Package icon locates an icon for a bundle, extracting the bundle's own
// filesystem when the icon directory has nothing installed yet.
//
// The search space is ordered data, not control flow: candidate paths are
// produced by pure functions so the priority order is testable on its own.
package icon

import (
	"path/filepath"
	"strings"
)

// Fallback is the symbolic theme icon used when no bundle icon can be
// resolved.
const Fallback = "application-x-executable"

// Formats lists icon file extensions in priority order.
var Formats = []string{".png", ".svg", ".xpm", ".jpg", ".jpeg", ".ico"}

// Resolutions lists icon theme resolutions from best to worst.
var Resolutions = []string{"512x512", "256x256", "128x128", "64x64", "48x48", "32x32"}

// GenericNames lists well-known icon file names tried when no app-named
// icon matches anywhere.
var GenericNames = []string{
	".DirIcon",
	"icon.png",
	"icon.svg",
	"app.png",
	"app.svg",
	"application.png",
	"logo.png",
}

const resolutionPlaceholder = "{resolution}"

// locations lists candidate subpaths inside an extracted tree, in search
// order. A {resolution} placeholder expands against Resolutions.
func locations(appName string) []string {
	return []string{
		".",
		"usr/share/icons/hicolor/" + resolutionPlaceholder + "/apps",
		"usr/share/icons/default/" + resolutionPlaceholder + "/apps",
		"usr/share/icons",
		"usr/share/pixmaps",
		".local/share/icons",
		filepath.Join("opt", appName, "icons"),
		"AppRun",
	}
}

// expand returns the concrete directories for one location entry, one per
// resolution for parameterized paths.
func expand(loc string) []string {
	if !strings.Contains(loc, resolutionPlaceholder) {
		return []string{loc}
	}
	out := make([]string, 0, len(Resolutions))
	for _, res := range Resolutions {
		out = append(out, strings.ReplaceAll(loc, resolutionPlaceholder, res))
	}
	return out
}

// namedCandidates returns the relative paths searched for an app-named
// icon, in priority order: location, then resolution, then format.
func namedCandidates(appName string) []string {
	var out []string
	for _, loc := range locations(appName) {
		for _, dir := range expand(loc) {
			for _, format := range Formats {
				out = append(out, filepath.Join(dir, appName+format))
			}
		}
	}
	return out
}

// genericCandidates returns the relative paths searched for generic icon
// names. Resolution-parameterized locations are skipped; generic names
// never live in per-resolution theme directories.
func genericCandidates(appName string) []string {
	var out []string
	for _, loc := range locations(appName) {
		if strings.Contains(loc, resolutionPlaceholder) {
			continue
		}
		for _, name := range GenericNames {
			out = append(out, filepath.Join(loc, name))
		}
	}
	return out
}
