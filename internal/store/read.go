package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// GetRun returns the run with the given ID, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var (
		run    Run
		tables string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, config_dir, tables FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.ConfigDir, &tables)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	if run.Tables, err = unmarshalTables(tables); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run ordered by ID. UUIDv7 IDs make that creation
// order.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_dir, tables FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run    Run
			tables string
		)
		if err := rows.Scan(&run.ID, &run.ConfigDir, &tables); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.Tables, err = unmarshalTables(tables); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ListQueries returns the queries of a run ordered by
// seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the run has no queries.
func (s *Store) ListQueries(ctx context.Context, runID string) ([]CompiledQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, table_name, kind, layer, dialect, sql_text
		FROM compiled_queries
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query compiled queries: %w", err)
	}
	return collectQueries(rows)
}

// ListTableQueries is ListQueries restricted to one table.
func (s *Store) ListTableQueries(ctx context.Context, runID, table string) ([]CompiledQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, table_name, kind, layer, dialect, sql_text
		FROM compiled_queries
		WHERE run_id = ? AND table_name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID, table)
	if err != nil {
		return nil, fmt.Errorf("query compiled queries: %w", err)
	}
	return collectQueries(rows)
}

func collectQueries(rows *sql.Rows) ([]CompiledQuery, error) {
	defer rows.Close()

	queries := []CompiledQuery{}
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compiled query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compiled queries: %w", err)
	}
	return queries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuery(r rowScanner) (CompiledQuery, error) {
	var q CompiledQuery
	err := r.Scan(&q.ID, &q.RunID, &q.Seq, &q.Table, &q.Kind, &q.Layer, &q.Dialect, &q.SQL)
	return q, err
}
