// Package desktop renders, writes, validates, and sweeps launcher entries.
//
// An entry is a flat key=value file under a [Desktop Entry] header. Three
// X-AppImage-* provenance fields tie the entry back to the bundle it was
// generated from so later passes can detect staleness and orphans.
package desktop

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abcdqfr/AppImgMon/internal/metadata"
)

// FileSuffix is the launcher entry file extension.
const FileSuffix = ".desktop"

// EntryMode is the permission applied to entries and shortcut copies.
const EntryMode = 0o755

// Provenance keys embedded in generated entries.
const (
	keyPath       = "X-AppImage-Path="
	keyHash       = "X-AppImage-Hash="
	keyLastUpdate = "X-AppImage-LastUpdate="
)

// Entry describes one rendered launcher entry.
type Entry struct {
	// Name is the application display name, derived from the bundle file
	// name.
	Name string
	// BundlePath is the absolute path of the bundle the entry launches.
	BundlePath string
	// Icon is either an absolute icon file path or a symbolic theme icon
	// name.
	Icon string
	// Hash is the bundle's content fingerprint at generation time.
	Hash string
	// UpdatedAt is the bundle's modification time at generation time.
	// Stored as whole epoch seconds in the rendered file.
	UpdatedAt time.Time
}

// Render produces the entry file content.
func (e Entry) Render() []byte {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", e.Name)
	fmt.Fprintf(&b, "Exec=\"%s\" %%F\n", e.BundlePath)
	fmt.Fprintf(&b, "Icon=%s\n", e.Icon)
	b.WriteString("Terminal=false\n")
	b.WriteString("Comment=AppImage application\n")
	b.WriteString("Categories=Utility;\n")
	b.WriteString("MimeType=application/x-executable;\n")
	b.WriteString("X-AppImage-Version=1.0\n")
	fmt.Fprintf(&b, "%s%s\n", keyPath, e.BundlePath)
	fmt.Fprintf(&b, "%s%s\n", keyHash, e.Hash)
	fmt.Fprintf(&b, "%s%d\n", keyLastUpdate, e.UpdatedAt.Unix())
	return []byte(b.String())
}

// EntryFileName returns the entry file name for an application name.
func EntryFileName(appName string) string {
	return appName + FileSuffix
}

// EntryPath returns the entry location for an application name inside dir.
func EntryPath(dir, appName string) string {
	return filepath.Join(dir, EntryFileName(appName))
}

// Provenance is the generation metadata parsed back out of an entry file.
// Fields missing from the file stay zero.
type Provenance struct {
	BundlePath string
	Hash       string
	UpdatedAt  time.Time
}

// ParseProvenance extracts the X-AppImage-* fields from entry content.
// Hand-authored entries without them parse cleanly to a zero Provenance.
func ParseProvenance(content []byte) Provenance {
	var p Provenance
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, keyPath):
			p.BundlePath = strings.TrimPrefix(line, keyPath)
		case strings.HasPrefix(line, keyHash):
			p.Hash = strings.TrimPrefix(line, keyHash)
		case strings.HasPrefix(line, keyLastUpdate):
			if sec, err := strconv.ParseInt(strings.TrimPrefix(line, keyLastUpdate), 10, 64); err == nil {
				p.UpdatedAt = time.Unix(sec, 0)
			}
		}
	}
	return p
}

// Recorded converts the provenance into the form the staleness check
// compares against a live fingerprint.
func (p Provenance) Recorded() metadata.Recorded {
	return metadata.Recorded{Hash: p.Hash, UpdatedAt: p.UpdatedAt}
}
