package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// CreateRun inserts a run. Uses ON CONFLICT(id) DO NOTHING, so creating
// the same run twice is a no-op.
func (s *Store) CreateRun(ctx context.Context, run Run) error {
	tables := run.Tables
	if tables == nil {
		tables = []string{}
	}
	tablesJSON, err := marshalSorted(tables)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_dir, tables)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.ConfigDir, string(tablesJSON))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// RecordQuery appends a compiled query to its run and returns the stored
// record and whether it was newly inserted.
//
// The ID is content-addressed (see QueryID). Recording an identical query
// again returns the existing record with inserted=false. New records get
// the next seq within their run.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) RecordQuery(ctx context.Context, q CompiledQuery) (rec CompiledQuery, inserted bool, err error) {
	id, err := QueryID(q)
	if err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	result, err := tx.ExecContext(ctx, `
		INSERT INTO compiled_queries
		(id, run_id, seq, table_name, kind, layer, dialect, sql_text)
		SELECT ?, ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?
		FROM compiled_queries WHERE run_id = ?
		ON CONFLICT(id) DO NOTHING
	`,
		id, q.RunID, q.Table, q.Kind, q.Layer, q.Dialect, q.SQL,
		q.RunID,
	)
	if err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: insert: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: rows affected: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, run_id, seq, table_name, kind, layer, dialect, sql_text
		FROM compiled_queries WHERE id = ?
	`, id)
	if rec, err = scanQuery(row); err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: select: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CompiledQuery{}, false, fmt.Errorf("record query: commit: %w", err)
	}
	return rec, n > 0, nil
}

func unmarshalTables(data string) ([]string, error) {
	tables := []string{}
	if data == "" {
		return tables, nil
	}
	if err := json.Unmarshal([]byte(data), &tables); err != nil {
		return nil, fmt.Errorf("unmarshal tables: %w", err)
	}
	return tables, nil
}
