package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abcdqfr/AppImgMon/internal/logging"
	"github.com/abcdqfr/AppImgMon/internal/preflight"
	"github.com/abcdqfr/AppImgMon/internal/service"
)

// debugLogLines is how much log history the diagnostic dump includes.
const debugLogLines = 20

func newDebugCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Check the environment and diagnose issues",
		Long: `Run environment diagnostics to ensure the monitor can operate correctly.

Checks:
  - Managed directories exist and are writable
  - Disk space near the watch directory (100MB minimum)
  - inotify availability for event-driven watching
  - systemd user manager for service management
  - Log file presence

The service unit state and the last 20 log lines are appended so the
output can be attached to a bug report as-is.

Watcher and systemd problems are non-critical warnings: the monitor
falls back to interval scanning, and service management is optional.

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  # Run diagnostics
  appimgmon debug

  # Verbose output with details
  appimgmon debug --verbose

  # JSON output for scripting
  appimgmon debug --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDebug(cmd, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDebug(cmd *cobra.Command, verbose, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)

	results := checker.RunAll(cmd.Context(), cfg)

	// Empty FilePath keeps Setup from creating the log tree the checks
	// just inspected.
	logger, _, err := logging.Setup(logging.Config{Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	svc := service.NewInstaller(cfg, logger).Status()
	logPath := logging.DefaultLogPath()

	if jsonOutput {
		if err := writeDebugJSON(cmd, checker, results, svc, logPath); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
		printServiceSection(cmd.OutOrStdout(), svc)
		printRecentLogs(cmd.OutOrStdout(), logPath)
	}

	if checker.HasCriticalFailures(results) {
		return errors.New("environment check failed")
	}

	return nil
}

// printServiceSection dumps the supervisor's view of the unit.
func printServiceSection(w io.Writer, st service.Status) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Service")
	if st.UnitInstalled {
		_, _ = fmt.Fprintf(w, "  unit:    %s\n", st.UnitPath)
	} else {
		_, _ = fmt.Fprintf(w, "  unit:    not installed (%s)\n", st.UnitPath)
	}
	_, _ = fmt.Fprintf(w, "  active:  %s\n", st.Active)
	_, _ = fmt.Fprintf(w, "  enabled: %s\n", st.Enabled)
}

// printRecentLogs dumps the tail of the monitor log.
func printRecentLogs(w io.Writer, path string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Recent logs (%s)\n", path)

	viewer := logging.NewViewer(logging.ViewerConfig{NoColor: true}, w)
	entries, err := viewer.Tail(path, debugLogLines)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintln(w, "  no log file yet")
		} else {
			_, _ = fmt.Fprintf(w, "  %v\n", err)
		}
		return
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "  no entries")
		return
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "  %s\n", viewer.FormatEntry(entry))
	}
}

// debugReport is the structure for JSON output.
type debugReport struct {
	Status   string         `json:"status"`
	Checks   []debugCheck   `json:"checks"`
	Service  service.Status `json:"service"`
	LogFile  string         `json:"log_file"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// debugCheck is a single check result for JSON output.
type debugCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func writeDebugJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult, svc service.Status, logPath string) error {
	report := debugReport{
		Status:  checker.SummaryStatus(results),
		Checks:  make([]debugCheck, len(results)),
		Service: svc,
		LogFile: logPath,
	}

	for i, r := range results {
		report.Checks[i] = debugCheck{
			Name:     r.Name,
			Status:   statusToString(r.Status),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		}

		if r.IsCritical() {
			report.Errors = append(report.Errors, r.Name+": "+r.Message)
		} else if r.Status == preflight.StatusWarn {
			report.Warnings = append(report.Warnings, r.Name+": "+r.Message)
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func statusToString(s preflight.CheckStatus) string {
	switch s {
	case preflight.StatusPass:
		return "pass"
	case preflight.StatusWarn:
		return "warn"
	case preflight.StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}
