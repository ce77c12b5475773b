package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// debugTestEnv points every managed directory at a fresh temp dir so the
// checks run against a disposable environment.
func debugTestEnv(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, ".state"))
	t.Setenv("APPIMAGE_WATCH_DIR", filepath.Join(tmpDir, "appimages"))
	t.Setenv("DESKTOP_ENTRY_DIR", filepath.Join(tmpDir, "applications"))
	t.Setenv("ICON_DIR", filepath.Join(tmpDir, "icons"))
	t.Setenv("DESKTOP_SHORTCUTS_DIR", filepath.Join(tmpDir, "desktop"))
	return tmpDir
}

func TestDebugCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the debug command
	debugCmd, _, err := cmd.Find([]string{"debug"})
	require.NoError(t, err)

	// Then: should have --verbose and --json flags
	assert.NotNil(t, debugCmd.Flags().Lookup("verbose"), "should have --verbose flag")
	assert.NotNil(t, debugCmd.Flags().Lookup("json"), "should have --json flag")
}

func TestDebugCmd_PrintsChecks(t *testing.T) {
	// Given: a disposable environment
	debugTestEnv(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"debug"})

	// When: running the diagnostics
	err := cmd.Execute()

	// Then: should succeed and print the check report plus diagnostics
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "AppImgMon Environment Check", "should print the report header")
	assert.Contains(t, output, "watch_dir", "should include the watch directory check")
	assert.Contains(t, output, "disk_space", "should include the disk space check")
	assert.Contains(t, output, "log_file", "should include the log file check")
	assert.Contains(t, output, "Status:", "should print a summary status")
	assert.Contains(t, output, "Service", "should dump the service state")
	assert.Contains(t, output, "not installed", "fresh env has no unit file")
	assert.Contains(t, output, "Recent logs", "should dump the log tail")
	assert.Contains(t, output, "no log file yet", "fresh env has no log history")
}

func TestDebugCmd_JSONOutput(t *testing.T) {
	// Given: a disposable environment
	debugTestEnv(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"debug", "--json"})

	// When: running the diagnostics with --json
	err := cmd.Execute()

	// Then: should output a machine-readable report
	require.NoError(t, err)

	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
		Service struct {
			UnitInstalled bool `json:"unit_installed"`
		} `json:"service"`
		LogFile string `json:"log_file"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report), "output should be valid JSON")

	assert.NotEmpty(t, report.Checks, "report should contain checks")
	assert.Contains(t, []string{"ready", "ready_with_warnings"}, report.Status,
		"fresh temp dirs should not produce critical failures")

	names := make(map[string]bool)
	for _, c := range report.Checks {
		names[c.Name] = true
	}
	assert.True(t, names["watch_dir"], "should check the watch directory")
	assert.True(t, names["disk_space"], "should check disk space")
	assert.True(t, names["log_file"], "should check log file presence")

	assert.False(t, report.Service.UnitInstalled, "fresh env has no unit file")
	assert.NotEmpty(t, report.LogFile, "report should name the log path")
}

func TestDebugCmd_CriticalFailure(t *testing.T) {
	// Given: a watch directory path occupied by a regular file
	tmpDir := debugTestEnv(t)
	blocked := filepath.Join(tmpDir, "appimages")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"debug"})

	// When: running the diagnostics
	err := cmd.Execute()

	// Then: the command should fail
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment check failed")
}
