package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// MinDiskSpaceBytes is the minimum required free disk space (100MB).
// Icon extraction unpacks bundle filesystems into scratch space, so the
// monitor needs headroom beyond the entries it writes.
const MinDiskSpaceBytes = 100 * 1024 * 1024

// CheckDiskSpace checks free space on the filesystem holding the given
// path. Missing path components are walked up to the nearest existing
// ancestor so the check works before the managed directories exist.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
	}

	probe := path
	for {
		if _, err := os.Stat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(probe, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)

	if availableBytes < MinDiskSpaceBytes {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(availableBytes))
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s free (minimum: 100 MB)", formatBytes(availableBytes))
	return result
}

// CheckWatchBackend probes filesystem notification support. Failure is
// not fatal: the monitor falls back to interval scanning.
func (c *Checker) CheckWatchBackend() CheckResult {
	result := CheckResult{
		Name:     "watch_backend",
		Required: false,
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("inotify unavailable, interval scanning only: %v", err)
		return result
	}
	_ = w.Close()

	result.Status = StatusPass
	result.Message = "inotify available"
	return result
}

// CheckSystemd probes for a usable systemd user manager. Without one the
// monitor still runs; only service installation is unavailable.
func (c *Checker) CheckSystemd() CheckResult {
	result := CheckResult{
		Name:     "systemd",
		Required: false,
	}

	if _, err := c.lookPath("systemctl"); err != nil {
		result.Status = StatusWarn
		result.Message = "systemctl not found, service management unavailable"
		return result
	}

	// is-system-running exits non-zero for any state but "running", so
	// only the printed state matters.
	out, _ := c.execCommand("systemctl", "--user", "is-system-running").Output()
	state := strings.TrimSpace(string(out))
	if state == "" {
		result.Status = StatusWarn
		result.Message = "systemd user manager unavailable"
		return result
	}

	if state != "running" {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("systemd user manager state: %s", state)
		return result
	}

	result.Status = StatusPass
	result.Message = "systemd user manager running"
	return result
}

// CheckLogFile reports whether the monitor has produced a log file yet.
// Absence is expected before the first run, so this never fails.
func (c *Checker) CheckLogFile(path string) CheckResult {
	result := CheckResult{
		Name:     "log_file",
		Required: false,
		Details:  path,
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = StatusWarn
		result.Message = "no log file yet (written on first run)"
		return result
	}
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot access %s: %v", path, err)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s (%s)", path, formatBytes(uint64(info.Size())))
	return result
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
