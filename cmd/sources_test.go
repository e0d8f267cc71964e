package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetSourcesCmd_Exists verifies getSourcesCmd returns
// a valid command.
func TestGetSourcesCmd_Exists(t *testing.T) {
	cmd := getSourcesCmd()
	require.NotNil(t, cmd, "Sources command should exist")
	assert.Equal(t, "sources", cmd.Use,
		"Command name should be sources")
}

// TestGetSourcesCmd_HelpText verifies help text content.
func TestGetSourcesCmd_HelpText(t *testing.T) {
	cmd := getSourcesCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "sources.yaml",
		"Help should mention the configuration file")
	assert.Contains(t, helpText, "authority",
		"Help should mention the authority weight")
	assert.Contains(t, helpText, "No database connection",
		"Help should state the command is offline")
}
