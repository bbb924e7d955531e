package recon

import "fmt"

// SampleKeys is an ordered list of key tuples collected by a preliminary
// sampling query. Columns name the tuple positions in the source
// vocabulary; every row has one value per column.
//
// Values may be string, any integer or float type, bool, nil (NULL),
// time.Time or decimal.Decimal.
type SampleKeys struct {
	Columns []string
	Rows    [][]any
}

// NewSampleKeys builds SampleKeys with normalized column names.
func NewSampleKeys(columns []string, rows ...[]any) SampleKeys {
	return SampleKeys{Columns: normalizeNames(columns), Rows: rows}
}

// Len returns the number of key rows.
func (k SampleKeys) Len() int { return len(k.Rows) }

// Index returns the position of col, or -1.
func (k SampleKeys) Index(col string) int {
	for i, c := range k.Columns {
		if normalizeName(c) == col {
			return i
		}
	}
	return -1
}

// Validate checks that there is at least one row and that every row is as
// wide as Columns.
func (k SampleKeys) Validate() error {
	if len(k.Rows) == 0 {
		return &ConfigError{Code: ErrCodeNoSampleKeys, Message: "no sample key rows supplied"}
	}
	for i, row := range k.Rows {
		if len(row) != len(k.Columns) {
			return &ConfigError{
				Code:    ErrCodeNoSampleKeys,
				Message: fmt.Sprintf("key row %d has %d values for %d columns", i, len(row), len(k.Columns)),
			}
		}
	}
	return nil
}
