package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Table string // restrict a run's queries to one table
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs and their queries",
		Long: `Without arguments, list the runs in the query log at --db in creation
order. With a run ID, print that run's queries in the order they were
recorded.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(cmd.Context(), opts, runID, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "only show queries of this table")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// do not create an empty log just to read it
	if _, err := os.Stat(opts.DB); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("query log not found: %s", opts.DB), nil)
	}
	s, err := store.Open(opts.DB)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer s.Close()

	if runID == "" {
		runs, err := s.ListRuns(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		if formatter.Format == "json" {
			return formatter.Success(runs)
		}
		for _, r := range runs {
			fmt.Fprintf(formatter.Writer, "%s  %s  [%s]\n", r.ID, r.ConfigDir, strings.Join(r.Tables, ", "))
		}
		return nil
	}

	if _, err := s.GetRun(ctx, runID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	var queries []store.CompiledQuery
	if opts.Table != "" {
		queries, err = s.ListTableQueries(ctx, runID, strings.ToLower(opts.Table))
	} else {
		queries, err = s.ListQueries(ctx, runID)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithRun(queries, runID)
	}
	for _, q := range queries {
		fmt.Fprintf(formatter.Writer, "-- %d %s %s %s (%s)\n%s\n", q.Seq, q.Table, q.Kind, q.Layer, q.Dialect, q.SQL)
	}
	return nil
}
