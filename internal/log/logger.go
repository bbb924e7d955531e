// Package log defines the structured logging interface used across the
// module. Components accept a Logger and default to a no-op one.
package log

// Logger is a leveled structured logger.
type Logger interface {
	Trace(msg string, fields ...Fields)
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(err error, msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Panic(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// Fields are key/value pairs attached to a log entry.
type Fields map[string]any

// Common field names.
const (
	ModuleField  = "module"
	TableField   = "table"
	DialectField = "dialect"
	LayerField   = "layer"
	KindField    = "kind"
)

// NoopLogger discards everything.
type NoopLogger struct{}

func (l *NoopLogger) Trace(msg string, fields ...Fields)            {}
func (l *NoopLogger) Debug(msg string, fields ...Fields)            {}
func (l *NoopLogger) Info(msg string, fields ...Fields)             {}
func (l *NoopLogger) Warn(err error, msg string, fields ...Fields)  {}
func (l *NoopLogger) Error(err error, msg string, fields ...Fields) {}
func (l *NoopLogger) Panic(msg string, fields ...Fields)            {}
func (l *NoopLogger) WithFields(fields Fields) Logger               { return l }

// NewLogger returns l, or a no-op logger when l is nil.
func NewLogger(l Logger) Logger {
	if l == nil {
		return &NoopLogger{}
	}
	return l
}

// MergeFields returns a new map with the entries of both; f2 wins on
// conflicts.
func MergeFields(f1, f2 Fields) Fields {
	out := make(Fields, len(f1)+len(f2))
	for k, v := range f1 {
		out[k] = v
	}
	for k, v := range f2 {
		out[k] = v
	}
	return out
}
