package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/output"
	"github.com/abcdqfr/AppImgMon/internal/service"
)

// newInstallCmd creates the install command.
func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install and start the systemd user service",
		Long: `Write the systemd user unit for the monitor, reload systemd, and
enable and start the service. The unit pins the directories from the
current configuration.

Requires a running systemd user manager. Exits non-zero when any step
fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd)
		},
	}
}

func runInstall(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	out := output.New(cmd.OutOrStdout())

	inst := service.NewInstaller(cfg, logger)
	if err := inst.Install(); err != nil {
		out.Errorf("install failed: %s", err)
		return err
	}

	out.Successf("Service %s installed and started", service.UnitName)
	out.KeyValue("Watching", cfg.WatchDir)
	out.KeyValue("Entries", cfg.ApplicationsDir)
	out.KeyValue("Icons", cfg.IconDir)
	return nil
}
