package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/monitor"
)

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor in the foreground",
		Long: `Run the synchronization loop in the foreground until interrupted.

The monitor performs a full pass at startup, then keeps launcher entries
in sync using filesystem events, falling back to interval scans when
inotify is unavailable. This is the command the systemd unit runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd)
		},
	}
}

func runMonitor(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return monitor.New(cfg, logger).Run(ctx)
}
