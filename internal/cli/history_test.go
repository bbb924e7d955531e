package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/store"
)

// seedLog creates a query log with two runs; run-a holds three queries.
func seedLog(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "recon.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, store.Run{ID: "run-a", ConfigDir: "/cfg", Tables: []string{"supplier", "nation"}}))
	require.NoError(t, s.CreateRun(ctx, store.Run{ID: "run-b", ConfigDir: "/other"}))

	for _, q := range []store.CompiledQuery{
		{RunID: "run-a", Table: "supplier", Kind: "hash", Layer: "source", Dialect: "databricks", SQL: "SELECT 1"},
		{RunID: "run-a", Table: "nation", Kind: "hash", Layer: "target", Dialect: "snowflake", SQL: "SELECT 2"},
		{RunID: "run-a", Table: "supplier", Kind: "threshold", Layer: "source", Dialect: "databricks", SQL: "SELECT 3"},
	} {
		_, _, err := s.RecordQuery(ctx, q)
		require.NoError(t, err)
	}
	return dbPath
}

func runHistoryCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryCommand_ListRuns(t *testing.T) {
	dbPath := seedLog(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "text", DB: dbPath})
	require.NoError(t, err)
	assert.Equal(t, "run-a  /cfg  [supplier, nation]\nrun-b  /other  []\n", out)
}

func TestHistoryCommand_ListRunsJSON(t *testing.T) {
	dbPath := seedLog(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "json", DB: dbPath})
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "run-a", resp.Data[0].ID)
	assert.Equal(t, []string{}, resp.Data[1].Tables)
}

func TestHistoryCommand_RunQueries(t *testing.T) {
	dbPath := seedLog(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "text", DB: dbPath}, "run-a")
	require.NoError(t, err)
	assert.Equal(t,
		"-- 1 supplier hash source (databricks)\nSELECT 1\n"+
			"-- 2 nation hash target (snowflake)\nSELECT 2\n"+
			"-- 3 supplier threshold source (databricks)\nSELECT 3\n",
		out)
}

func TestHistoryCommand_TableFilter(t *testing.T) {
	dbPath := seedLog(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "json", DB: dbPath}, "run-a", "--table", "SUPPLIER")
	require.NoError(t, err)

	var resp struct {
		Data  []store.CompiledQuery `json:"data"`
		RunID string                `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-a", resp.RunID)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
	assert.Equal(t, int64(3), resp.Data[1].Seq)
}

func TestHistoryCommand_Errors(t *testing.T) {
	dbPath := seedLog(t)

	t.Run("missing log", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "none.db")
		out, err := runHistoryCmd(t, &RootOptions{Format: "text", DB: missing})
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E005]: query log not found")
		assert.NoFileExists(t, missing)
	})

	t.Run("unknown run", func(t *testing.T) {
		out, err := runHistoryCmd(t, &RootOptions{Format: "json", DB: dbPath}, "run-z")
		require.Error(t, err)

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("too many args", func(t *testing.T) {
		_, err := runHistoryCmd(t, &RootOptions{Format: "text", DB: dbPath}, "run-a", "run-b")
		require.Error(t, err)
	})
}
