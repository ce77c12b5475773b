package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/bundle"
	"github.com/abcdqfr/AppImgMon/internal/daemon"
	"github.com/abcdqfr/AppImgMon/internal/desktop"
	"github.com/abcdqfr/AppImgMon/internal/logging"
	"github.com/abcdqfr/AppImgMon/internal/output"
	"github.com/abcdqfr/AppImgMon/internal/service"
)

// statusInfo is the collected monitor state for display.
type statusInfo struct {
	Running         bool           `json:"running"`
	PID             int            `json:"pid,omitempty"`
	Service         service.Status `json:"service"`
	WatchMode       string         `json:"watch_mode"`
	WatchDir        string         `json:"watch_dir"`
	ApplicationsDir string         `json:"applications_dir"`
	IconDir         string         `json:"icon_dir"`
	Bundles         int            `json:"bundles"`
	ManagedEntries  int            `json:"managed_entries"`
	LogFile         string         `json:"log_file"`
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show monitor and service status",
		Long: `Display the monitor's current state:
  - Whether a monitor process is running
  - systemd service registration and activity
  - Managed directories and watch mode
  - Bundle and launcher-entry counts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	info := statusInfo{
		Service:         service.NewInstaller(cfg, logger).Status(),
		WatchMode:       cfg.WatchMode,
		WatchDir:        cfg.WatchDir,
		ApplicationsDir: cfg.ApplicationsDir,
		IconDir:         cfg.IconDir,
		LogFile:         logging.DefaultLogPath(),
	}

	pidFile := daemon.NewPIDFile(daemon.DefaultPIDPath())
	if pidFile.IsRunning() {
		info.Running = true
		info.PID, _ = pidFile.Read()
	}

	if bundles, err := bundle.List(cfg.WatchDir); err == nil {
		info.Bundles = len(bundles)
	}
	info.ManagedEntries = countManagedEntries(cfg.ApplicationsDir)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	renderStatus(output.New(cmd.OutOrStdout()), info)
	return nil
}

func renderStatus(out *output.Writer, info statusInfo) {
	out.Header("AppImgMon Status")
	out.Newline()

	if info.Running {
		out.KeyValue("Monitor", fmt.Sprintf("running (pid %d)", info.PID))
	} else {
		out.KeyValue("Monitor", "not running")
	}

	if info.Service.UnitInstalled {
		out.KeyValue("Service", fmt.Sprintf("%s (%s)", info.Service.Active, info.Service.Enabled))
	} else {
		out.KeyValue("Service", "not installed")
	}

	out.KeyValue("Watch mode", info.WatchMode)
	out.KeyValue("Watch directory", info.WatchDir)
	out.KeyValue("Entry directory", info.ApplicationsDir)
	out.KeyValue("Icon directory", info.IconDir)
	out.KeyValue("Bundles", fmt.Sprintf("%d", info.Bundles))
	out.KeyValue("Managed entries", fmt.Sprintf("%d", info.ManagedEntries))
	out.KeyValue("Log file", info.LogFile)
}

// countManagedEntries counts launcher entries carrying provenance, which
// distinguishes generated entries from hand-authored ones.
func countManagedEntries(dir string) int {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+desktop.FileSuffix))
	if err != nil {
		return 0
	}

	count := 0
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if desktop.ParseProvenance(content).BundlePath != "" {
			count++
		}
	}
	return count
}
