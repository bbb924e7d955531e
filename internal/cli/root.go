package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/recon/internal/log"
	"github.com/roach88/recon/internal/log/zerolog"
)

// EnvPrefix prefixes the environment variables that back global flags,
// e.g. RECON_LOG_LEVEL or RECON_DB.
const EnvPrefix = "RECON"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string // zerolog level; empty disables logging
	DB       string // query log path, used by --record and history

	logger log.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Logger returns the process logger, building it on first use. Commands
// created without the root command get a no-op logger.
func (o *RootOptions) Logger(w io.Writer) log.Logger {
	if o.logger == nil {
		if o.LogLevel == "" {
			o.logger = &log.NoopLogger{}
		} else {
			o.logger = zerolog.NewWithWriter(&zerolog.Config{LogLevel: o.LogLevel}, w)
		}
	}
	return o.logger
}

// NewRootCommand creates the root command for the recon CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "recon",
		Short: "recon - reconciliation query compiler",
		Long: `Compile declarative table reconciliation configs into dialect-specific
SQL for sampling, threshold and row-hash comparison.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// flags win over RECON_* variables, which win over defaults
			opts.Verbose = v.GetBool("verbose")
			opts.Format = v.GetString("format")
			opts.LogLevel = v.GetString("log-level")
			opts.DB = v.GetString("db")

			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("format", "text", "output format (json|text)")
	flags.String("log-level", "", "log level. One of trace, debug, info, warn, error; empty disables logging")
	flags.String("db", "recon.db", "path to the SQLite query log")
	for _, name := range []string{"verbose", "format", "log-level", "db"} {
		// only fails for a nil flag
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
