package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_Exists verifies the root command is wired up.
func TestRootCmd_Exists(t *testing.T) {
	require.NotNil(t, rootCmd, "Root command should exist")
	assert.Equal(t, "ebisu", rootCmd.Use,
		"Command name should be ebisu")
}

// TestRootCmd_Subcommands verifies all lifecycle commands are
// registered.
func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"init", "migrate", "import", "sources", "status"}

	got := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		got[sub.Name()] = true
	}

	for _, name := range want {
		assert.True(t, got[name],
			"Subcommand %s should be registered", name)
	}
}

// TestRootCmd_ShortDescription verifies short description.
func TestRootCmd_ShortDescription(t *testing.T) {
	assert.NotEmpty(t, rootCmd.Short,
		"Short description should not be empty")
	assert.Contains(t, rootCmd.Short, "Ebisu",
		"Short description should mention Ebisu")
	assert.Contains(t, rootCmd.Short, "lifecycle",
		"Short description should mention lifecycle")
}

// TestRootCmd_LongDescription verifies long description.
func TestRootCmd_LongDescription(t *testing.T) {
	assert.NotEmpty(t, rootCmd.Long,
		"Long description should not be empty")
	assert.Contains(t, rootCmd.Long, "PostgreSQL",
		"Long description should mention PostgreSQL")
	assert.Contains(t, rootCmd.Long, "registry",
		"Long description should mention registries")
	assert.Contains(t, rootCmd.Long, "EBISU_",
		"Long description should mention env var prefix")
}

// TestRootCmd_HasPreRun verifies bootstrap function is set.
func TestRootCmd_HasPreRun(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentPreRunE,
		"PersistentPreRunE should be set for bootstrap")
}

// TestRootCmd_ErrorSilencing verifies error and usage silencing.
func TestRootCmd_ErrorSilencing(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors,
		"Errors should be silenced")
	assert.True(t, rootCmd.SilenceUsage,
		"Usage should be silenced on errors")
}

// TestRootCmd_VersionFlag verifies the -V shorthand is registered.
func TestRootCmd_VersionFlag(t *testing.T) {
	flag := rootCmd.Flags().Lookup("version")
	require.NotNil(t, flag, "Should have version flag")
	assert.Equal(t, "V", flag.Shorthand,
		"Short flag should be -V")
}

// TestRootCmd_VersionOutput verifies the version template output.
// Cobra handles the version flag before any PreRun hook, so this does
// not touch the home directory or the database.
func TestRootCmd_VersionOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "version:",
		"Version output should contain the version line")
	assert.Contains(t, output, "build:",
		"Version output should contain the build line")
	assert.NotContains(t, output, "ebisu version:",
		"Should use custom version template")
}
