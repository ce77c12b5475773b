package desktop

import (
	"fmt"
	"os"
	"strings"
)

// requiredMarkers are the substrings a well-formed entry must contain.
var requiredMarkers = []string{
	"[Desktop Entry]",
	"Type=Application",
	"Exec=",
	"Icon=",
}

// ValidateContent checks that entry content carries the required markers.
func ValidateContent(content []byte) error {
	s := string(content)
	for _, m := range requiredMarkers {
		if !strings.Contains(s, m) {
			return fmt.Errorf("launcher entry missing %q", m)
		}
	}
	return nil
}

// ValidateFile checks an entry file's content markers and permission bits.
// A wrong mode is corrected in place rather than reported.
func ValidateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read entry %s: %w", path, err)
	}
	if err := ValidateContent(content); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat entry %s: %w", path, err)
	}
	if info.Mode().Perm() != EntryMode {
		if err := os.Chmod(path, EntryMode); err != nil {
			return fmt.Errorf("failed to fix mode on entry %s: %w", path, err)
		}
	}
	return nil
}
