package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/log"
	"github.com/roach88/recon/internal/querybuilder"
	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/sqlrender"
	"github.com/roach88/recon/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Table   string
	Kind    string
	Layer   string
	Dialect string
	Schema  string // YAML schema file for the layer
	Keys    string // YAML sample key file, sampling only
	Record  bool   // append the query to the log at --db

	runIDs store.RunIDGenerator
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Table   string `json:"table"`
	Kind    string `json:"kind"`
	Layer   string `json:"layer"`
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
	QueryID string `json:"query_id,omitempty"`
}

// NewQueryCommand creates the query command. Recorded runs get UUIDv7 IDs.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return newQueryCommand(rootOpts, store.UUIDv7Generator{})
}

func newQueryCommand(rootOpts *RootOptions, runIDs store.RunIDGenerator) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts, runIDs: runIDs}

	cmd := &cobra.Command{
		Use:   "query <config-dir>",
		Short: "Render a reconciliation query for one table",
		Long: `Render the sampling, threshold or hash query of one table for one
layer and dialect.

Threshold queries always target databricks and compare both layers, so
--layer, --dialect and --schema are ignored for them. Sampling needs
--keys.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "source name of the table (required)")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "query kind: sampling, threshold or hash (required)")
	cmd.Flags().StringVarP(&opts.Layer, "layer", "l", string(recon.Source), "layer: source or target")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", sqlrender.Databricks, "SQL dialect of the layer")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "YAML schema of the layer's table")
	cmd.Flags().StringVar(&opts.Keys, "keys", "", "YAML sample keys for sampling queries")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the query in the query log (--db)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	kind, err := querybuilder.ParseKind(opts.Kind)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}
	layer, err := recon.ParseLayer(opts.Layer)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	loadResult, loadErrors := LoadTables(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			code = loadErr.Code
		}
		exitCode := ExitCommandError
		if isValidationCode(code) {
			exitCode = ExitFailure
		}
		return formatter.fail(exitCode, code, errorMessage(loadErrors[0]), nil)
	}
	spec, ok := loadResult.Table(opts.Table)
	if !ok {
		return formatter.fail(ExitCommandError, ErrCodeUnknownTable,
			fmt.Sprintf("no table %q in %s", opts.Table, dir), loadResult.TableNames())
	}

	var schema []recon.Schema
	if opts.Schema != "" {
		if schema, err = LoadSchema(opts.Schema); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeInputFailed, err.Error(), nil)
		}
	} else if kind != querybuilder.KindThreshold {
		return formatter.fail(ExitCommandError, ErrCodeInputFailed, fmt.Sprintf("--schema is required for %s queries", kind), nil)
	}

	var keys recon.SampleKeys
	if kind == querybuilder.KindSampling {
		if opts.Keys == "" {
			return formatter.fail(ExitCommandError, ErrCodeInputFailed, "--keys is required for sampling queries", nil)
		}
		if keys, err = LoadSampleKeys(opts.Keys); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeInputFailed, err.Error(), nil)
		}
	}

	table := recon.NewTable(spec)
	b, err := querybuilder.New(table, schema, layer, opts.Dialect, querybuilder.WithLogger(logger))
	if err != nil {
		return queryFailed(formatter, err)
	}
	sql, err := b.Build(kind, keys)
	if err != nil {
		return queryFailed(formatter, err)
	}

	result := QueryResult{
		Table:   table.SourceName(),
		Kind:    string(kind),
		Layer:   layer.String(),
		Dialect: b.Dialect(),
		SQL:     sql,
	}
	if kind == querybuilder.KindThreshold {
		result.Dialect = sqlrender.Databricks
	}

	var runID string
	if opts.Record {
		rec, err := recordQuery(ctx, opts, dir, loadResult.TableNames(), result)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		runID, result.QueryID = rec.RunID, rec.ID
		logger.Debug("query recorded", log.Fields{"run_id": rec.RunID, "query_id": rec.ID, "seq": rec.Seq})
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithRun(result, runID)
	}
	return formatter.SuccessWithRun(sql, runID)
}

// queryFailed reports a synthesis error. Configuration errors exit with
// ExitFailure, anything else is a command error.
func queryFailed(formatter *OutputFormatter, err error) error {
	var ce *recon.ConfigError
	if errors.As(err, &ce) {
		return formatter.fail(ExitFailure, ErrCodeQueryFailed, err.Error(), map[string]string{"config_code": string(ce.Code)})
	}
	return formatter.fail(ExitCommandError, ErrCodeQueryFailed, err.Error(), nil)
}

// recordQuery opens the query log, starts a run and appends the query.
func recordQuery(ctx context.Context, opts *QueryOptions, dir string, tables []string, result QueryResult) (store.CompiledQuery, error) {
	if opts.DB == "" {
		return store.CompiledQuery{}, fmt.Errorf("--record needs a query log path (--db)")
	}
	s, err := store.Open(opts.DB)
	if err != nil {
		return store.CompiledQuery{}, err
	}
	defer s.Close()

	run := store.Run{ID: opts.runIDs.Generate(), ConfigDir: dir, Tables: tables}
	if err := s.CreateRun(ctx, run); err != nil {
		return store.CompiledQuery{}, err
	}
	rec, _, err := s.RecordQuery(ctx, store.CompiledQuery{
		RunID:   run.ID,
		Table:   result.Table,
		Kind:    result.Kind,
		Layer:   result.Layer,
		Dialect: result.Dialect,
		SQL:     result.SQL,
	})
	return rec, err
}
