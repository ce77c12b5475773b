package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Watch modes.
const (
	WatchModeAuto    = "auto"
	WatchModeEvents  = "events"
	WatchModePolling = "polling"
)

// Config holds the complete appimgmon configuration. It is assembled once at
// startup and passed explicitly into constructors; nothing reads it from a
// global.
type Config struct {
	// WatchDir is the directory scanned for *.AppImage bundles (flat, no
	// recursion).
	WatchDir string `yaml:"watch_dir" json:"watch_dir"`

	// ApplicationsDir receives the generated .desktop launcher entries.
	ApplicationsDir string `yaml:"applications_dir" json:"applications_dir"`

	// IconDir receives icons extracted from bundles.
	IconDir string `yaml:"icon_dir" json:"icon_dir"`

	// DesktopDir receives optional .desktop shortcut copies when
	// DesktopShortcuts is enabled.
	DesktopDir       string `yaml:"desktop_dir" json:"desktop_dir"`
	DesktopShortcuts bool   `yaml:"desktop_shortcuts" json:"desktop_shortcuts"`

	// WatchMode selects the change detection driver: "events" (inotify),
	// "polling", or "auto" (events with polling fallback).
	WatchMode string `yaml:"watch_mode" json:"watch_mode"`

	// PollInterval is the scan period for the polling driver.
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`

	// DebounceWindow coalesces rapid inotify events for the same path.
	DebounceWindow string `yaml:"debounce_window" json:"debounce_window"`

	// ExtractTimeout bounds a single --appimage-extract subprocess.
	ExtractTimeout string `yaml:"extract_timeout" json:"extract_timeout"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a Config with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		WatchDir:         "~/appimages",
		ApplicationsDir:  "~/.local/share/applications",
		IconDir:          "~/.local/share/icons",
		DesktopDir:       "~/Desktop",
		DesktopShortcuts: true,
		WatchMode:        WatchModeAuto,
		PollInterval:     "5s",
		DebounceWindow:   "200ms",
		ExtractTimeout:   "60s",
		LogLevel:         "info",
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/appimgmon/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/appimgmon/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "appimgmon", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "appimgmon", "config.yaml")
	}
	return filepath.Join(home, ".config", "appimgmon", "config.yaml")
}

// Load builds the effective configuration. It applies sources in order of
// increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/appimgmon/config.yaml, or $APPIMGMON_CONFIG)
//  3. Environment variables
//
// A missing user config file is fine; a missing APPIMGMON_CONFIG path is an
// error, since the caller asked for that exact file.
func Load() (*Config, error) {
	cfg := NewConfig()

	if path := os.Getenv("APPIMGMON_CONFIG"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	} else if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML decodes a YAML file over the receiver, so absent keys keep their
// current values and explicit false/zero values stick.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. The directory
// variables keep the names the service unit has always exported; the rest are
// namespaced APPIMGMON_*.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("APPIMAGE_WATCH_DIR"); v != "" {
		c.WatchDir = v
	}
	if v := os.Getenv("DESKTOP_ENTRY_DIR"); v != "" {
		c.ApplicationsDir = v
	}
	if v := os.Getenv("ICON_DIR"); v != "" {
		c.IconDir = v
	}
	if v := os.Getenv("DESKTOP_SHORTCUTS_DIR"); v != "" {
		c.DesktopDir = v
	}
	if v := os.Getenv("APPIMGMON_DESKTOP_SHORTCUTS"); v != "" {
		c.DesktopShortcuts = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("APPIMGMON_WATCH_MODE"); v != "" {
		c.WatchMode = v
	}
	if v := os.Getenv("APPIMGMON_POLL_INTERVAL"); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv("APPIMGMON_DEBOUNCE"); v != "" {
		c.DebounceWindow = v
	}
	if v := os.Getenv("APPIMGMON_EXTRACT_TIMEOUT"); v != "" {
		c.ExtractTimeout = v
	}
	if v := os.Getenv("APPIMGMON_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// expandPaths expands a leading ~ in every directory field and makes the
// results absolute, so later path containment checks compare like with like.
func (c *Config) expandPaths() {
	c.WatchDir = expandPath(c.WatchDir)
	c.ApplicationsDir = expandPath(c.ApplicationsDir)
	c.IconDir = expandPath(c.IconDir)
	c.DesktopDir = expandPath(c.DesktopDir)
}

// Validate checks the configuration. Invalid configuration is a setup error
// and callers are expected to treat it as fatal.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.WatchDir, validation.Required),
		validation.Field(&c.ApplicationsDir, validation.Required),
		validation.Field(&c.IconDir, validation.Required),
		validation.Field(&c.WatchMode, validation.Required,
			validation.In(WatchModeAuto, WatchModeEvents, WatchModePolling)),
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.PollInterval, validation.Required, validation.By(durationAtLeast(time.Second))),
		validation.Field(&c.DebounceWindow, validation.By(durationAtLeast(0))),
		validation.Field(&c.ExtractTimeout, validation.Required, validation.By(durationAtLeast(time.Second))),
	); err != nil {
		return err
	}
	if c.DesktopShortcuts && c.DesktopDir == "" {
		return fmt.Errorf("desktop_shortcuts is enabled but desktop_dir is empty")
	}
	return nil
}

// PollIntervalDuration returns the parsed poll interval.
func (c *Config) PollIntervalDuration() time.Duration {
	return parseDurationOr(c.PollInterval, 5*time.Second)
}

// DebounceWindowDuration returns the parsed debounce window.
func (c *Config) DebounceWindowDuration() time.Duration {
	return parseDurationOr(c.DebounceWindow, 200*time.Millisecond)
}

// ExtractTimeoutDuration returns the parsed extraction timeout.
func (c *Config) ExtractTimeoutDuration() time.Duration {
	return parseDurationOr(c.ExtractTimeout, time.Minute)
}

// ManagedDirs returns the directories the monitor creates at startup and
// keeps recreating before each reconcile pass.
func (c *Config) ManagedDirs() []string {
	dirs := []string{c.WatchDir, c.ApplicationsDir, c.IconDir}
	if c.DesktopShortcuts && c.DesktopDir != "" {
		dirs = append(dirs, c.DesktopDir)
	}
	return dirs
}

// durationAtLeast builds an ozzo rule that accepts a parseable duration of at
// least min. Empty strings pass so Required stays the sole presence check.
func durationAtLeast(min time.Duration) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		if d < min {
			return fmt.Errorf("must be at least %s", min)
		}
		return nil
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// expandPath expands a leading ~ to the user home directory and returns an
// absolute path.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			if p == "~" {
				return home
			}
			return filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
