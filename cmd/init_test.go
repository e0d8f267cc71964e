package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetInitCmd_Exists verifies getInitCmd returns a valid command.
func TestGetInitCmd_Exists(t *testing.T) {
	cmd := getInitCmd()
	require.NotNil(t, cmd, "Init command should exist")
	assert.Equal(t, "init", cmd.Use,
		"Command name should be init")
}

// TestGetInitCmd_HasForceFlag verifies the --force flag exists.
func TestGetInitCmd_HasForceFlag(t *testing.T) {
	cmd := getInitCmd()

	flag := cmd.Flags().Lookup("force")
	require.NotNil(t, flag,
		"Should have force flag")
	assert.Equal(t, "f", flag.Shorthand,
		"Short flag should be -f")
	assert.Equal(t, "false", flag.DefValue,
		"Default should be false")
}

// TestGetInitCmd_HelpText verifies help text content.
func TestGetInitCmd_HelpText(t *testing.T) {
	cmd := getInitCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "schema",
		"Help should mention schema")
	assert.Contains(t, helpText, "intelligence_reports",
		"Help should list the ledger table")
	assert.Contains(t, helpText, "ebisu init",
		"Help should include examples")
}

// TestGetInitCmd_IndependentInstances verifies each call returns
// independent instance.
func TestGetInitCmd_IndependentInstances(t *testing.T) {
	cmd1 := getInitCmd()
	cmd2 := getInitCmd()

	assert.NotSame(t, cmd1, cmd2,
		"Each call should return new instance")

	cmd1.Short = "test1"
	cmd2.Short = "test2"

	assert.Equal(t, "test1", cmd1.Short)
	assert.Equal(t, "test2", cmd2.Short)
}
