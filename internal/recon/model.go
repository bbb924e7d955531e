package recon

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultFetchSize is the JDBC fetch size used when none is configured.
const DefaultFetchSize = 100

// Schema is one column of a table as reported by its warehouse.
type Schema struct {
	ColumnName string `yaml:"column_name" json:"column_name"`
	DataType   string `yaml:"data_type" json:"data_type"`
}

// NewSchema returns a Schema with a normalized column name.
func NewSchema(columnName, dataType string) Schema {
	return Schema{ColumnName: normalizeName(columnName), DataType: dataType}
}

// ColumnMapping renames a source column on the target side.
type ColumnMapping struct {
	SourceName string
	TargetName string
}

// Transformation overrides the normalized projection of one column.
// An empty Source or Target means that layer is not overridden.
type Transformation struct {
	ColumnName string
	Source     string
	Target     string
}

// Filters holds raw predicates applied per layer. Empty means no filter.
type Filters struct {
	Source string
	Target string
}

// JdbcReaderOptions configures partitioned reads of the source table.
type JdbcReaderOptions struct {
	NumberPartitions int
	PartitionColumn  string
	LowerBound       string
	UpperBound       string
	FetchSize        int
}

// TableSpec is the raw description of a reconciliation table as loaded
// from configuration. NewTable normalizes it into a Table.
type TableSpec struct {
	SourceName        string
	TargetName        string
	JoinColumns       []string
	SelectColumns     []string
	DropColumns       []string
	ColumnMapping     []ColumnMapping
	Transformations   []Transformation
	Thresholds        []Thresholds
	Filters           *Filters
	JdbcReaderOptions *JdbcReaderOptions
}

// Table is a normalized, immutable reconciliation unit. Every name is
// lower-cased. Accessors return copies, so callers cannot alter a Table.
type Table struct {
	sourceName      string
	targetName      string
	joinColumns     []string
	selectColumns   []string
	dropColumns     []string
	columnMapping   []ColumnMapping
	transformations []Transformation
	thresholds      []Thresholds
	filters         *Filters
	jdbcOptions     *JdbcReaderOptions
	resolver        Resolver
}

// NewTable normalizes spec into a Table. Empty column lists are treated as
// absent; in particular an empty select list selects the whole schema.
func NewTable(spec TableSpec) *Table {
	t := &Table{
		sourceName:    normalizeName(spec.SourceName),
		targetName:    normalizeName(spec.TargetName),
		joinColumns:   normalizeNames(spec.JoinColumns),
		selectColumns: normalizeNames(spec.SelectColumns),
		dropColumns:   normalizeNames(spec.DropColumns),
	}

	for _, m := range spec.ColumnMapping {
		t.columnMapping = append(t.columnMapping, ColumnMapping{
			SourceName: normalizeName(m.SourceName),
			TargetName: normalizeName(m.TargetName),
		})
	}
	for _, tr := range spec.Transformations {
		tr.ColumnName = normalizeName(tr.ColumnName)
		t.transformations = append(t.transformations, tr)
	}
	for _, th := range spec.Thresholds {
		th.ColumnName = normalizeName(th.ColumnName)
		th.Type = normalizeName(th.Type)
		t.thresholds = append(t.thresholds, th)
	}
	if spec.Filters != nil {
		f := *spec.Filters
		t.filters = &f
	}
	if spec.JdbcReaderOptions != nil {
		o := *spec.JdbcReaderOptions
		o.PartitionColumn = normalizeName(o.PartitionColumn)
		if o.FetchSize == 0 {
			o.FetchSize = DefaultFetchSize
		}
		t.jdbcOptions = &o
	}
	t.resolver = NewResolver(t.columnMapping)
	return t
}

// normalizeName lower-cases a name after NFC normalization so that
// canonically equivalent spellings compare equal.
func normalizeName(s string) string {
	// a Caser is stateful and must not be shared
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalizeName(n)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
