package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/output"
	"github.com/abcdqfr/AppImgMon/internal/service"
)

// newUninstallCmd creates the uninstall command.
func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Stop the service and remove the systemd user unit",
		Long: `Stop and disable the monitor service and remove its unit file.
Launcher entries and icons are left in place; use the monitor or 'sync'
to manage those.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd)
		},
	}
}

func runUninstall(cmd *cobra.Command) error {
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
	if err := inst.Uninstall(); err != nil {
		out.Errorf("uninstall failed: %s", err)
		return err
	}

	out.Successf("Service %s removed", service.UnitName)
	return nil
}
