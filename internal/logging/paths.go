package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory. It follows the XDG state
// directory convention:
//   - $XDG_STATE_HOME/appimgmon/logs (if XDG_STATE_HOME is set)
//   - ~/.local/state/appimgmon/logs (default)
//
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "appimgmon", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "appimgmon", "logs")
	}
	return filepath.Join(home, ".local", "state", "appimgmon", "logs")
}

// DefaultLogPath returns the default monitor log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "appimgmon.log")
}

// FindLogFile locates the log file for viewing. An explicit path takes
// precedence; otherwise the default path is checked.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no log file found. The monitor may not have run yet.\nExpected at: %s", path)
}
