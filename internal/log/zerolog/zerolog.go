// Package zerolog adapts github.com/rs/zerolog to the log.Logger interface.
package zerolog

import (
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	loglib "github.com/roach88/recon/internal/log"
)

// Config configures the process logger.
type Config struct {
	// LogLevel is a zerolog level name. Empty or unknown names silence
	// leveled output.
	LogLevel string

	// NoColor disables ANSI colors in console output.
	NoColor bool
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// NewZerolog builds a console logger writing to stderr.
func NewZerolog(cfg *Config) *zerolog.Logger {
	return newZerolog(cfg, os.Stderr)
}

func newZerolog(cfg *Config, out io.Writer) *zerolog.Logger {
	// an unparsable level yields NoLevel
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	w := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.TimeFormat = time.RFC3339Nano
		w.NoColor = cfg.NoColor
	})
	l := zerolog.New(w).With().Timestamp().Caller().Logger().Level(level)
	return &l
}

// Logger implements log.Logger on top of a zerolog logger.
type Logger struct {
	zl     *zerolog.Logger
	fields loglib.Fields
}

// NewLogger wraps zl.
func NewLogger(zl *zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// New builds a stderr logger from cfg and wraps it.
func New(cfg *Config) *Logger {
	return NewLogger(NewZerolog(cfg))
}

// NewWithWriter is New writing to out instead of stderr.
func NewWithWriter(cfg *Config, out io.Writer) *Logger {
	return NewLogger(newZerolog(cfg, out))
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	withFields(l.zl.Trace(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	withFields(l.zl.Debug(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	withFields(l.zl.Info(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zl.Warn().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zl.Error().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Panic(msg string, fields ...loglib.Fields) {
	withFields(l.zl.Panic(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{zl: l.zl, fields: loglib.MergeFields(l.fields, fields)}
}

func withFields(event *zerolog.Event, maps ...loglib.Fields) *zerolog.Event {
	for _, m := range maps {
		for key, value := range m {
			switch v := value.(type) {
			case string:
				event = event.Str(key, v)
			case int:
				event = event.Int(key, v)
			case int64:
				event = event.Int64(key, v)
			case bool:
				event = event.Bool(key, v)
			case []string:
				event = event.Strs(key, v)
			case time.Duration:
				event = event.Dur(key, v)
			case error:
				event = event.AnErr(key, v)
			default:
				event = event.Interface(key, v)
			}
		}
	}
	return event
}
