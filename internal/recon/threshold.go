package recon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ThresholdMode is the comparison applied to a thresholded column.
type ThresholdMode string

const (
	NumberAbsolute   ThresholdMode = "number_absolute"
	NumberPercentage ThresholdMode = "number_percentage"
	DateTime         ThresholdMode = "datetime"
)

// Thresholds is a tolerance on one column. A "%" on either bound selects
// percentage mode.
type Thresholds struct {
	ColumnName string
	LowerBound string
	UpperBound string
	Type       string
}

var numericTypes = map[string]bool{
	"tinyint": true, "smallint": true, "int": true, "integer": true, "bigint": true,
	"int128": true, "int256": true, "uint": true, "utinyint": true, "usmallint": true,
	"ubigint": true, "float": true, "double": true, "real": true, "decimal": true,
	"numeric": true, "number": true, "bigdecimal": true, "udecimal": true,
	"money": true, "smallmoney": true, "bit": true,
}

var temporalTypes = map[string]bool{
	"date": true, "date32": true, "datetime": true, "datetime2": true, "datetime64": true,
	"smalldatetime": true, "time": true, "timetz": true, "timestamp": true,
	"timestamptz": true, "timestamp_tz": true, "timestamp_ltz": true, "timestamp_ntz": true,
	"timestampltz": true, "timestampntz": true, "timestamp_s": true, "timestamp_ms": true,
	"timestamp_ns": true,
}

// baseType lower-cases a type name and strips its parameter list, so that
// "DECIMAL(10, 2)" becomes "decimal".
func baseType(typ string) string {
	t := strings.ToLower(strings.TrimSpace(typ))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// IsNumericType reports whether typ belongs to the numeric family.
func IsNumericType(typ string) bool { return numericTypes[baseType(typ)] }

// IsTemporalType reports whether typ belongs to the temporal family.
func IsTemporalType(typ string) bool { return temporalTypes[baseType(typ)] }

// IsPercentage reports whether either bound carries a "%".
func (th Thresholds) IsPercentage() bool {
	return strings.Contains(th.LowerBound, "%") || strings.Contains(th.UpperBound, "%")
}

// Mode derives the threshold mode from the declared type. Temporal types
// ignore the bounds' percentage marker.
func (th Thresholds) Mode() (ThresholdMode, error) {
	switch {
	case IsNumericType(th.Type):
		if th.IsPercentage() {
			return NumberPercentage, nil
		}
		return NumberAbsolute, nil
	case IsTemporalType(th.Type):
		return DateTime, nil
	}
	return "", &ConfigError{
		Code:    ErrCodeUnsupportedThresholdType,
		Message: fmt.Sprintf("threshold type %q is neither numeric nor temporal", th.Type),
		Column:  th.ColumnName,
	}
}

// Bounds parses both bounds with any "%" stripped. The order of the bounds
// is not checked: an inverted pair is emitted as written and simply matches
// nothing.
func (th Thresholds) Bounds() (lower, upper decimal.Decimal, err error) {
	lower, err = parseBound(th.LowerBound)
	if err != nil {
		return lower, upper, th.boundError(fmt.Sprintf("lower bound %q: %v", th.LowerBound, err))
	}
	upper, err = parseBound(th.UpperBound)
	if err != nil {
		return lower, upper, th.boundError(fmt.Sprintf("upper bound %q: %v", th.UpperBound, err))
	}
	return lower, upper, nil
}

func (th Thresholds) boundError(msg string) *ConfigError {
	return &ConfigError{Code: ErrCodeInvalidThresholdBound, Message: msg, Column: th.ColumnName}
}

func parseBound(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, "%", "")))
}
