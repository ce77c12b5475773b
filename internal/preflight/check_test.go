package preflight

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcdqfr/AppImgMon/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.WatchDir = t.TempDir()
	cfg.ApplicationsDir = t.TempDir()
	cfg.IconDir = t.TempDir()
	cfg.DesktopDir = t.TempDir()
	return cfg
}

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{
			name:     "required pass is not critical",
			result:   CheckResult{Status: StatusPass, Required: true},
			expected: false,
		},
		{
			name:     "required fail is critical",
			result:   CheckResult{Status: StatusFail, Required: true},
			expected: true,
		},
		{
			name:     "optional fail is not critical",
			result:   CheckResult{Status: StatusFail, Required: false},
			expected: false,
		},
		{
			name:     "required warn is not critical",
			result:   CheckResult{Status: StatusWarn, Required: true},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestChecker_NewWithOptions(t *testing.T) {
	// Given: custom options
	buf := &bytes.Buffer{}
	checker := New(
		WithVerbose(true),
		WithOutput(buf),
	)

	// Then: options are applied
	assert.True(t, checker.verbose)
	assert.Equal(t, buf, checker.output)
}

func TestChecker_CheckDir_Writable(t *testing.T) {
	// Given: a writable directory
	dir := t.TempDir()

	// When: checking it
	result := New().checkDir("watch_dir", dir, true)

	// Then: passes and reports the path
	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, dir, result.Message)
	assert.True(t, result.Required)
}

func TestChecker_CheckDir_Missing(t *testing.T) {
	// Given: a directory that does not exist yet
	dir := filepath.Join(t.TempDir(), "not-created")

	// When: checking it
	result := New().checkDir("icon_dir", dir, true)

	// Then: warns, since the monitor creates managed directories itself
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "created at startup")
}

func TestChecker_CheckDir_NotADirectory(t *testing.T) {
	// Given: a plain file where a directory should be
	path := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	// When: checking it
	result := New().checkDir("watch_dir", path, true)

	// Then: fails
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "not a directory")
}

func TestChecker_CheckDir_ReadOnly(t *testing.T) {
	// Given: a read-only directory (skip on CI/root)
	if os.Getuid() == 0 {
		t.Skip("Skipping read-only test when running as root")
	}

	readOnlyDir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(readOnlyDir, 0o555))
	defer func() { _ = os.Chmod(readOnlyDir, 0o755) }() // Restore for cleanup

	// When: checking as required and as optional
	required := New().checkDir("applications_dir", readOnlyDir, true)
	optional := New().checkDir("desktop_dir", readOnlyDir, false)

	// Then: the required check fails, the optional one only warns
	assert.Equal(t, StatusFail, required.Status)
	assert.Contains(t, required.Message, "not writable")
	assert.Equal(t, StatusWarn, optional.Status)
}

func TestChecker_RunAll_ReturnsAllChecks(t *testing.T) {
	// Given: a full configuration with shortcuts enabled
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfg := testConfig(t)
	cfg.DesktopShortcuts = true

	// When: running all checks
	results := New().RunAll(context.Background(), cfg)

	// Then: every check is present
	checkNames := make(map[string]bool)
	for _, r := range results {
		checkNames[r.Name] = true
	}

	assert.True(t, checkNames["watch_dir"], "watch_dir check missing")
	assert.True(t, checkNames["applications_dir"], "applications_dir check missing")
	assert.True(t, checkNames["icon_dir"], "icon_dir check missing")
	assert.True(t, checkNames["desktop_dir"], "desktop_dir check missing")
	assert.True(t, checkNames["disk_space"], "disk_space check missing")
	assert.True(t, checkNames["watch_backend"], "watch_backend check missing")
	assert.True(t, checkNames["systemd"], "systemd check missing")
	assert.True(t, checkNames["log_file"], "log_file check missing")
}

func TestChecker_RunAll_SkipsDesktopDirWhenShortcutsDisabled(t *testing.T) {
	// Given: shortcuts disabled
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfg := testConfig(t)
	cfg.DesktopShortcuts = false

	// When: running all checks
	results := New().RunAll(context.Background(), cfg)

	// Then: the desktop dir is not checked
	for _, r := range results {
		assert.NotEqual(t, "desktop_dir", r.Name)
	}
}

func TestChecker_CheckLogFile_MissingWarns(t *testing.T) {
	// Given: a log path that does not exist yet
	path := filepath.Join(t.TempDir(), "logs", "appimgmon.log")

	// When: checking log file presence
	result := New().CheckLogFile(path)

	// Then: a warning, never a failure
	assert.Equal(t, StatusWarn, result.Status)
	assert.False(t, result.Required)
	assert.Contains(t, result.Message, "no log file yet")
}

func TestChecker_CheckLogFile_ExistingPasses(t *testing.T) {
	// Given: a log file with content
	path := filepath.Join(t.TempDir(), "appimgmon.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"msg":"started"}`+"\n"), 0o644))

	// When: checking log file presence
	result := New().CheckLogFile(path)

	// Then: the check passes and reports the path with its size
	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "appimgmon.log")
	assert.Contains(t, result.Message, "bytes")
}

func TestChecker_CheckDiskSpace_MissingPathWalksUp(t *testing.T) {
	// Given: a deeply missing path on a real filesystem
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	// When: checking disk space
	result := New().CheckDiskSpace(path)

	// Then: the nearest existing ancestor is checked instead
	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "free")
}

func TestChecker_CheckWatchBackend(t *testing.T) {
	result := New().CheckWatchBackend()

	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "inotify available", result.Message)
}

func TestChecker_CheckSystemd_NotFound(t *testing.T) {
	// Given: no systemctl in PATH
	checker := New()
	checker.lookPath = func(file string) (string, error) {
		return "", exec.ErrNotFound
	}

	// When: checking systemd availability
	result := checker.CheckSystemd()

	// Then: warns without failing
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "systemctl not found")
}

func TestChecker_CheckSystemd_Running(t *testing.T) {
	// Given: a user manager reporting running
	checker := New()
	checker.lookPath = func(file string) (string, error) {
		return "/usr/bin/systemctl", nil
	}
	checker.execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("echo", "running")
	}

	// When: checking systemd availability
	result := checker.CheckSystemd()

	// Then: passes
	assert.Equal(t, StatusPass, result.Status)
}

func TestChecker_CheckSystemd_Degraded(t *testing.T) {
	// Given: a user manager reporting degraded
	checker := New()
	checker.lookPath = func(file string) (string, error) {
		return "/usr/bin/systemctl", nil
	}
	checker.execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("echo", "degraded")
	}

	// When: checking systemd availability
	result := checker.CheckSystemd()

	// Then: warns with the reported state
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "degraded")
}

func TestChecker_CheckSystemd_NoUserManager(t *testing.T) {
	// Given: systemctl present but unable to reach a user manager
	checker := New()
	checker.lookPath = func(file string) (string, error) {
		return "/usr/bin/systemctl", nil
	}
	checker.execCommand = func(name string, args ...string) *exec.Cmd {
		return exec.Command("false")
	}

	// When: checking systemd availability
	result := checker.CheckSystemd()

	// Then: warns
	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "unavailable")
}

func TestChecker_SummaryStatus(t *testing.T) {
	checker := New()

	tests := []struct {
		name     string
		results  []CheckResult
		expected string
	}{
		{
			name: "all pass",
			results: []CheckResult{
				{Status: StatusPass},
				{Status: StatusPass},
			},
			expected: "ready",
		},
		{
			name: "with warnings",
			results: []CheckResult{
				{Status: StatusPass},
				{Status: StatusWarn},
			},
			expected: "ready_with_warnings",
		},
		{
			name: "with critical failure",
			results: []CheckResult{
				{Status: StatusPass},
				{Status: StatusFail, Required: true},
			},
			expected: "failed",
		},
		{
			name: "with optional failure",
			results: []CheckResult{
				{Status: StatusPass},
				{Status: StatusFail, Required: false},
			},
			expected: "ready_with_warnings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.SummaryStatus(tt.results))
		})
	}
}

func TestChecker_PrintResults(t *testing.T) {
	// Given: mixed check results
	results := []CheckResult{
		{Name: "disk_space", Status: StatusPass, Message: "50 GB free"},
		{Name: "watch_backend", Status: StatusWarn, Message: "interval scanning only"},
		{Name: "watch_dir", Status: StatusFail, Message: "not writable", Required: true},
	}

	buf := &bytes.Buffer{}
	checker := New(WithOutput(buf))

	// When: printing results
	checker.PrintResults(results)

	// Then: output contains formatted results
	output := buf.String()
	assert.Contains(t, output, "[PASS]")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[FAIL]")
	assert.Contains(t, output, "disk_space")
	assert.Contains(t, output, "Status: FAILED")
	assert.Contains(t, output, "1 error(s):")
	assert.Contains(t, output, "1 warning(s):")
}
