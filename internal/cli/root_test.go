package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "recon", cmd.Use)
	assert.Contains(t, cmd.Long, "dialect-specific")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, cmdName := range []string{"compile", "query", "history", "test"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"verbose", "v", "false"},
		{"format", "", "text"},
		{"log-level", "", ""},
		{"db", "", "recon.db"},
	}
	for _, tt := range tests {
		flag := cmd.PersistentFlags().Lookup(tt.name)
		require.NotNil(t, flag, tt.name)
		assert.Equal(t, tt.shorthand, flag.Shorthand, tt.name)
		assert.Equal(t, tt.def, flag.DefValue, tt.name)
	}
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	for _, name := range []string{"table", "kind", "layer", "dialect", "schema", "keys", "record"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "source", queryCmd.Flags().Lookup("layer").DefValue)
	assert.Equal(t, "databricks", queryCmd.Flags().Lookup("dialect").DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--format", "invalid", "compile", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), `Error: invalid format "invalid"`)
}

func TestFormatFromEnvironment(t *testing.T) {
	configDir, _, _ := supplierFixture(t)
	t.Setenv("RECON_FORMAT", "json")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"compile", configDir})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestFlagBeatsEnvironment(t *testing.T) {
	configDir, _, _ := supplierFixture(t)
	t.Setenv("RECON_FORMAT", "json")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "text", "compile", configDir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Compiled 2 table(s)")
}

func TestLogLevelWritesToStderr(t *testing.T) {
	configDir, _, _ := supplierFixture(t)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--log-level", "info", "compile", configDir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stderr.String(), "config compiled")
	assert.NotContains(t, stdout.String(), "config compiled")
}

func TestRootOptions_LoggerDefaultsToNoop(t *testing.T) {
	opts := &RootOptions{}
	buf := &bytes.Buffer{}
	opts.Logger(buf).Info("hello")
	assert.Empty(t, buf.String())
}
