// Package cmd provides the CLI commands for AppImgMon.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/config"
	"github.com/abcdqfr/AppImgMon/internal/logging"
	"github.com/abcdqfr/AppImgMon/pkg/version"
)

// Debug logging flag
var debugMode bool

// NewRootCmd creates the root command for the appimgmon CLI.
func NewRootCmd() *cobra.Command {
	var legacyInstall bool

	cmd := &cobra.Command{
		Use:   "appimgmon",
		Short: "Keep launcher entries in sync with a directory of AppImages",
		Long: `AppImgMon watches a directory for AppImage bundles and keeps matching
.desktop launcher entries and icons in sync: new bundles get an entry,
changed bundles get refreshed, and removed bundles have their entries
swept away.

Running with no arguments starts the monitor in the foreground. Use
'appimgmon install' to register it as a systemd user service instead.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			if legacyInstall {
				return runInstall(cmd)
			}
			return runMonitor(cmd)
		},
	}

	cmd.SetVersionTemplate("appimgmon version {{.Version}}\n")

	// Kept from the pre-subcommand CLI so existing unit files and scripts
	// using 'appimgmon --install' keep working.
	cmd.Flags().BoolVar(&legacyInstall, "install", false, "Install as a systemd user service (same as 'appimgmon install')")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDebugCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig builds the effective configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging initializes file logging for a command. Long-running
// commands mirror to stderr so systemd captures the stream; one-shot
// commands keep stderr clean for human-readable output.
func setupLogging(cfg *config.Config, toStderr bool) (*slog.Logger, func(), error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.WriteToStderr = toStderr
	if debugMode {
		logCfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	return logger, cleanup, nil
}
