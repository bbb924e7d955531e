package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recon/internal/compiler"
	"github.com/roach88/recon/internal/log"
	"github.com/roach88/recon/internal/recon"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// TableSummary describes one compiled table.
type TableSummary struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	JoinColumns []string `json:"join_columns"`
	Mappings    int      `json:"column_mappings"`
	Transforms  int      `json:"transformations"`
	Thresholds  []string `json:"thresholds"`
	Partitioned bool     `json:"partitioned"`
}

// CompilationResult holds the compiled tables.
type CompilationResult struct {
	Tables []TableSummary `json:"tables"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <config-dir>",
		Short: "Compile and validate CUE table configs",
		Long: `Compile CUE reconciliation table configs and validate them.

Every table is checked for unknown fields, missing values, supported
threshold types, well-formed bounds and conflicting column settings.
All problems are reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // we handle our own error output
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled tables as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.Logger(cmd.ErrOrStderr()).WithFields(log.Fields{log.ModuleField: "cli"})

	loadResult, loadErrors := LoadTables(dir, LoadModeCollectAll)
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return formatter.fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	if len(loadErrors) > 0 {
		logger.Warn(loadErrors[0], "config rejected", log.Fields{"errors": len(loadErrors)})
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{}
	for _, spec := range loadResult.Tables {
		formatter.VerboseLog("Compiled table: %s", spec.SourceName)
		result.Tables = append(result.Tables, summarize(spec))
	}
	logger.Info("config compiled", log.Fields{"tables": len(result.Tables), "dir": dir})

	if opts.Output != "" {
		if err := writeJSONFile(result, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func summarize(spec recon.TableSpec) TableSummary {
	table := recon.NewTable(spec)
	s := TableSummary{
		Source:      table.SourceName(),
		Target:      table.TargetName(),
		JoinColumns: table.JoinColumns(recon.Source).Sorted(),
		Mappings:    len(table.ColumnMappings()),
		Transforms:  len(table.Transformations()),
		Thresholds:  []string{},
	}
	for _, th := range table.Thresholds() {
		// Validate has already accepted every threshold
		mode, _ := th.Mode()
		s.Thresholds = append(s.Thresholds, fmt.Sprintf("%s:%s", th.ColumnName, mode))
	}
	if o := table.JdbcReaderOptions(); o != nil && o.PartitionColumn != "" {
		s.Partitioned = true
	}
	return s
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d table(s)\n\n", len(result.Tables))
	for _, t := range result.Tables {
		fmt.Fprintf(w, "  %s → %s: join on %s", t.Source, t.Target, strings.Join(t.JoinColumns, ", "))
		if len(t.Thresholds) > 0 {
			fmt.Fprintf(w, ", %d threshold(s)", len(t.Thresholds))
		}
		fmt.Fprintln(w)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote compiled tables to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs every load, compile and validation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	exitCode := ExitCommandError
	for _, err := range errs {
		if isValidationCode(errorCode(err)) {
			// a config that parses but fails validation is a failed check
			exitCode = ExitFailure
		}
	}

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = CLIError{Code: errorCode(err), Message: errorMessage(err)}
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(exitCode, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", errorCode(err), errorMessage(err))
	}
	return NewExitError(exitCode, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

func errorMessage(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Table != "" {
			return fmt.Sprintf("table %s: %s", loadErr.Table, loadErr.Message)
		}
		return loadErr.Message
	}
	return err.Error()
}

func isValidationCode(code string) bool {
	switch code {
	case compiler.ErrTargetNameEmpty, compiler.ErrDuplicateMapping, compiler.ErrUnsupportedThreshold,
		compiler.ErrInvalidBounds, compiler.ErrEmptyTransformation, compiler.ErrJoinColumnDropped,
		compiler.ErrPartitionWithoutCount, compiler.ErrDuplicateThreshold, compiler.ErrDuplicateTransformation:
		return true
	}
	return false
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(v any, filename string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
