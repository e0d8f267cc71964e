package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetStatusCmd_Exists verifies getStatusCmd returns
// a valid command.
func TestGetStatusCmd_Exists(t *testing.T) {
	cmd := getStatusCmd()
	require.NotNil(t, cmd, "Status command should exist")
	assert.Equal(t, "status", cmd.Use,
		"Command name should be status")
}

// TestGetStatusCmd_ShortDescription verifies short description.
func TestGetStatusCmd_ShortDescription(t *testing.T) {
	cmd := getStatusCmd()

	assert.NotEmpty(t, cmd.Short,
		"Short description should not be empty")
	assert.Contains(t, cmd.Short, "per-source",
		"Short description should mention per-source scope")
}

// TestGetStatusCmd_HelpText verifies help text content.
func TestGetStatusCmd_HelpText(t *testing.T) {
	cmd := getStatusCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "read-only",
		"Help should state the command is read-only")
	assert.Contains(t, helpText, "trust",
		"Help should mention trust rollups")
	assert.Contains(t, helpText, "zeros",
		"Help should mention never-imported registries")
}
