// Package metadata fingerprints bundles and decides launcher entry
// staleness.
//
// A fingerprint is the first 8 hex characters of the bundle's MD5 digest
// plus its modification time. The hash is a change detector for local
// files, not a security boundary.
package metadata

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 8

// ModTimeTolerance absorbs the sub-second precision lost when entries store
// the modification time as whole epoch seconds.
const ModTimeTolerance = time.Second

// Fingerprint describes the current on-disk state of a bundle.
type Fingerprint struct {
	Hash    string
	ModTime time.Time
}

// Recorded is what a launcher entry remembers about the bundle it was
// generated from.
type Recorded struct {
	Hash      string
	UpdatedAt time.Time
}

// Compute streams the file at path and returns its fingerprint.
func Compute(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to stat bundle %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open bundle %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := md5.New() //nolint:gosec // change detection, not integrity
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash bundle %s: %w", path, err)
	}

	return Fingerprint{
		Hash:    hex.EncodeToString(h.Sum(nil))[:HashLength],
		ModTime: info.ModTime(),
	}, nil
}

// IsStale reports whether an entry generated from rec no longer matches the
// bundle described by fp. Missing recorded fields always read as stale so a
// hand-edited or truncated entry gets regenerated rather than trusted.
func IsStale(rec Recorded, fp Fingerprint) bool {
	if rec.Hash == "" || rec.UpdatedAt.IsZero() {
		return true
	}
	if rec.Hash != fp.Hash {
		return true
	}

	diff := fp.ModTime.Sub(rec.UpdatedAt)
	if diff < 0 {
		diff = -diff
	}
	return diff > ModTimeTolerance
}
