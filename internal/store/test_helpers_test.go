package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a run with the given ID.
func createTestRun(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.CreateRun(context.Background(), Run{ID: id, ConfigDir: "testdata", Tables: []string{"supplier"}}); err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
}

// createTestQuery returns a hash query for the supplier table.
func createTestQuery(runID, layer, sql string) CompiledQuery {
	return CompiledQuery{
		RunID:   runID,
		Table:   "supplier",
		Kind:    "hash",
		Layer:   layer,
		Dialect: "databricks",
		SQL:     sql,
	}
}
