package recon

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeUnsupportedThresholdType indicates a threshold type outside the
	// numeric and temporal families.
	ErrCodeUnsupportedThresholdType ConfigErrorCode = "UNSUPPORTED_THRESHOLD_TYPE"

	// ErrCodeInvalidThresholdBound indicates a bound that is not a decimal.
	ErrCodeInvalidThresholdBound ConfigErrorCode = "INVALID_THRESHOLD_BOUND"

	// ErrCodeUnsupportedDialect indicates a dialect with no registered rules.
	ErrCodeUnsupportedDialect ConfigErrorCode = "UNSUPPORTED_DIALECT"

	// ErrCodeInvalidLayer indicates a layer name other than source or target.
	ErrCodeInvalidLayer ConfigErrorCode = "INVALID_LAYER"

	// ErrCodeMissingJoinColumns indicates a query that needs join columns
	// (or a join column value) that the configuration does not provide.
	ErrCodeMissingJoinColumns ConfigErrorCode = "MISSING_JOIN_COLUMNS"

	// ErrCodeNoSampleKeys indicates a sampling request with no key rows.
	ErrCodeNoSampleKeys ConfigErrorCode = "NO_SAMPLE_KEYS"
)

// ConfigError is a reconciliation configuration problem detected while
// building a query. The caller decides whether to skip the table or abort.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Table is the source table name, when known.
	Table string

	// Column is the offending column, when known.
	Column string

	// Dialect is the requested dialect, when relevant.
	Dialect string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var ctx []string
	if e.Table != "" {
		ctx = append(ctx, "table="+e.Table)
	}
	if e.Column != "" {
		ctx = append(ctx, "column="+e.Column)
	}
	if e.Dialect != "" {
		ctx = append(ctx, "dialect="+e.Dialect)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ctx, ", "))
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasCode returns true if err is or wraps a ConfigError with the given code.
func HasCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// NewUnsupportedDialectError creates a ConfigError for an unknown dialect.
func NewUnsupportedDialectError(dialect string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnsupportedDialect,
		Message: fmt.Sprintf("dialect %q is not supported", dialect),
		Dialect: dialect,
	}
}
