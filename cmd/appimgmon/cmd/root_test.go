package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing with --help
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()

	// Then: it should show usage information
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "appimgmon", "Help should mention program name")
	assert.Contains(t, output, "Usage:", "Help should show usage")
	assert.Contains(t, output, "install", "Help should list install command")
}

func TestRootCmd_ShowsVersion(t *testing.T) {
	// Given: a root command

	// When: executing with --version
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	err := cmd.Execute()

	// Then: it should show the version line
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "appimgmon version", "Version output should use the version template")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: a root command

	// When: checking available commands
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, subcmd := range cmd.Commands() {
		names[subcmd.Name()] = true
	}

	// Then: every documented subcommand should exist
	for _, want := range []string{"run", "sync", "install", "uninstall", "status", "config", "debug", "logs", "version"} {
		assert.True(t, names[want], "should have %q command", want)
	}
}

func TestRootCmd_HasLegacyInstallFlag(t *testing.T) {
	// Given: a root command
	cmd := NewRootCmd()

	// When: looking up the legacy --install flag
	flag := cmd.Flags().Lookup("install")

	// Then: the flag should exist for backwards compatibility
	require.NotNil(t, flag, "root should keep the --install flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_HasDebugPersistentFlag(t *testing.T) {
	// Given: a root command
	cmd := NewRootCmd()

	// When: looking up the persistent --debug flag
	flag := cmd.PersistentFlags().Lookup("debug")

	// Then: the flag should be available to all subcommands
	require.NotNil(t, flag, "root should define a persistent --debug flag")
	assert.Equal(t, "false", flag.DefValue)
}
