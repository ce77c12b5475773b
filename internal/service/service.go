// Package service manages the monitor's registration as a systemd user
// service: rendering the unit file, installing and removing it, and querying
// the supervisor's view of the unit.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/abcdqfr/AppImgMon/internal/config"
)

// UnitName is the systemd unit the monitor runs under.
const UnitName = "appimgmon.service"

// Installer writes the user unit and drives systemctl.
type Installer struct {
	cfg *config.Config
	log *slog.Logger

	// For testing: override command execution and executable resolution
	execCommand func(name string, args ...string) *exec.Cmd
	executable  func() (string, error)
}

// NewInstaller creates an installer for the given configuration.
func NewInstaller(cfg *config.Config, log *slog.Logger) *Installer {
	return &Installer{
		cfg:         cfg,
		log:         log,
		execCommand: exec.Command,
		executable:  os.Executable,
	}
}

// UnitPath returns the location of the user unit file.
func UnitPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "systemd", "user", UnitName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user", UnitName), nil
}

// renderUnit produces the unit file content. The Environment lines pin the
// directories the service was installed with, so a later config change does
// not silently re-point a running service.
func renderUnit(execPath string, cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	b.WriteString("Description=AppImgMon - Monitor AppImage directory and generate .desktop files\n")
	b.WriteString("After=default.target\n")
	b.WriteString("\n")
	b.WriteString("[Service]\n")
	fmt.Fprintf(&b, "Environment=\"APPIMAGE_WATCH_DIR=%s\"\n", cfg.WatchDir)
	fmt.Fprintf(&b, "Environment=\"DESKTOP_ENTRY_DIR=%s\"\n", cfg.ApplicationsDir)
	fmt.Fprintf(&b, "Environment=\"ICON_DIR=%s\"\n", cfg.IconDir)
	fmt.Fprintf(&b, "ExecStart=%s run\n", execPath)
	b.WriteString("Restart=always\n")
	b.WriteString("\n")
	b.WriteString("[Install]\n")
	b.WriteString("WantedBy=default.target\n")
	return b.String()
}

// Install writes the unit file, reloads systemd, and enables and starts the
// service. Any failure is returned so the CLI can exit non-zero.
func (i *Installer) Install() error {
	execPath, err := i.executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	unitPath, err := UnitPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(unitPath), 0o755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(unitPath, []byte(renderUnit(execPath, i.cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	i.log.Info("service unit written", slog.String("unit", unitPath))

	steps := [][]string{
		{"daemon-reload"},
		{"enable", UnitName},
		{"start", UnitName},
	}
	for _, args := range steps {
		if err := i.systemctl(args...); err != nil {
			return err
		}
	}

	i.log.Info("service installed and started",
		slog.String("watch_dir", i.cfg.WatchDir),
		slog.String("applications_dir", i.cfg.ApplicationsDir),
		slog.String("icon_dir", i.cfg.IconDir))
	return nil
}

// Uninstall stops and disables the service and removes the unit file. Stop
// and disable failures are tolerated so a half-installed service can still
// be cleaned up.
func (i *Installer) Uninstall() error {
	if err := i.systemctl("stop", UnitName); err != nil {
		i.log.Warn("failed to stop service", slog.String("error", err.Error()))
	}
	if err := i.systemctl("disable", UnitName); err != nil {
		i.log.Warn("failed to disable service", slog.String("error", err.Error()))
	}

	unitPath, err := UnitPath()
	if err != nil {
		return err
	}
	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	if err := i.systemctl("daemon-reload"); err != nil {
		i.log.Warn("failed to reload systemd", slog.String("error", err.Error()))
	}

	i.log.Info("service uninstalled", slog.String("unit", unitPath))
	return nil
}

// Status reports the supervisor's view of the unit.
type Status struct {
	UnitInstalled bool   `json:"unit_installed"`
	UnitPath      string `json:"unit_path"`
	Active        string `json:"active"`
	Enabled       string `json:"enabled"`
}

// Status queries the unit file and systemctl. Fields degrade to "unknown"
// when systemctl is unavailable.
func (i *Installer) Status() Status {
	st := Status{Active: "unknown", Enabled: "unknown"}

	if path, err := UnitPath(); err == nil {
		st.UnitPath = path
		if _, err := os.Stat(path); err == nil {
			st.UnitInstalled = true
		}
	}

	if out := i.query("is-active"); out != "" {
		st.Active = out
	}
	if out := i.query("is-enabled"); out != "" {
		st.Enabled = out
	}
	return st
}

// systemctl runs one mutating systemctl --user command.
func (i *Installer) systemctl(args ...string) error {
	full := append([]string{"--user"}, args...)
	out, err := i.execCommand("systemctl", full...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// query runs a read-only systemctl verb. is-active and is-enabled exit
// non-zero for inactive states, so only the output matters here.
func (i *Installer) query(verb string) string {
	out, _ := i.execCommand("systemctl", "--user", verb, UnitName).Output()
	return strings.TrimSpace(string(out))
}
