package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/output"
	"github.com/abcdqfr/AppImgMon/internal/reconcile"
)

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass and exit",
		Long: `Run a single full pass without starting the monitor: create or
refresh launcher entries for every bundle in the watch directory, then
sweep entries whose bundle no longer exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd)
		},
	}
}

func runSync(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New(cmd.OutOrStdout())
	rec := reconcile.New(cfg, logger)

	if err := rec.EnsureDirs(); err != nil {
		out.Errorf("failed to create managed directories: %s", err)
		return err
	}

	bundles := rec.Scan(ctx, nil)
	removed := rec.Sweep()

	out.Successf("Synced %d bundle(s) from %s", len(bundles), cfg.WatchDir)
	if len(removed) > 0 {
		out.Statusf("", "removed %d orphaned entries", len(removed))
	}
	return nil
}
