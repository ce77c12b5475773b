package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/abcdqfr/AppImgMon/internal/config"
	"github.com/abcdqfr/AppImgMon/internal/logging"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose bool
	output  io.Writer

	// For testing: override command lookup and execution
	lookPath    func(file string) (string, error)
	execCommand func(name string, args ...string) *exec.Cmd
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:      os.Stdout,
		lookPath:    exec.LookPath,
		execCommand: exec.Command,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks against the given configuration.
func (c *Checker) RunAll(_ context.Context, cfg *config.Config) []CheckResult {
	var results []CheckResult

	results = append(results, c.CheckWatchDir(cfg))
	results = append(results, c.CheckApplicationsDir(cfg))
	results = append(results, c.CheckIconDir(cfg))
	if cfg.DesktopShortcuts {
		results = append(results, c.CheckDesktopDir(cfg))
	}

	results = append(results, c.CheckDiskSpace(cfg.WatchDir))
	results = append(results, c.CheckWatchBackend())
	results = append(results, c.CheckSystemd())
	results = append(results, c.CheckLogFile(logging.DefaultLogPath()))

	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "AppImgMon Environment Check")
	_, _ = fmt.Fprintln(c.output, "===========================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.Name+": "+r.Message)
		} else if r.Status == StatusWarn {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errors))
		for _, e := range errors {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

// CheckWatchDir validates the directory the monitor watches for bundles.
func (c *Checker) CheckWatchDir(cfg *config.Config) CheckResult {
	return c.checkDir("watch_dir", cfg.WatchDir, true)
}

// CheckApplicationsDir validates the directory launcher entries are written to.
func (c *Checker) CheckApplicationsDir(cfg *config.Config) CheckResult {
	return c.checkDir("applications_dir", cfg.ApplicationsDir, true)
}

// CheckIconDir validates the directory extracted icons are installed to.
func (c *Checker) CheckIconDir(cfg *config.Config) CheckResult {
	return c.checkDir("icon_dir", cfg.IconDir, true)
}

// CheckDesktopDir validates the directory shortcut copies are placed in.
// Shortcuts are best-effort, so problems here never block the monitor.
func (c *Checker) CheckDesktopDir(cfg *config.Config) CheckResult {
	return c.checkDir("desktop_dir", cfg.DesktopDir, false)
}

// checkDir reports whether a managed directory exists and is writable.
// A missing directory is only a warning: the monitor creates every
// managed directory on each pass.
func (c *Checker) checkDir(name, path string, required bool) CheckResult {
	result := CheckResult{
		Name:     name,
		Required: required,
		Details:  path,
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s missing (created at startup)", path)
		return result
	}
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot access %s: %v", path, err)
		return result
	}
	if !info.IsDir() {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not a directory", path)
		return result
	}

	probe := filepath.Join(path, ".appimgmon-preflight")
	f, err := os.Create(probe)
	if err != nil {
		if required {
			result.Status = StatusFail
		} else {
			result.Status = StatusWarn
		}
		result.Message = fmt.Sprintf("%s not writable: %v", path, err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = path
	return result
}
