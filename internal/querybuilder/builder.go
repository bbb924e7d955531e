// Package querybuilder synthesizes the reconciliation queries: sampling,
// threshold comparison and row hashing.
//
// A QueryBuilder is bound to one table, schema, layer and dialect. Every
// Build method is a pure function of that state (plus sample keys for
// sampling) and renders a fresh SQL string on each call. Builders hold no
// mutable state and may be shared between goroutines.
package querybuilder

import (
	"fmt"
	"sort"

	"github.com/roach88/recon/internal/log"
	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/rules"
	"github.com/roach88/recon/internal/sqlexpr"
	"github.com/roach88/recon/internal/sqlrender"
)

// TablePlaceholder stands for the physical table in layer queries.
// Connectors substitute it before execution.
const TablePlaceholder = ":tbl"

// QueryBuilder builds queries for one side of a reconciliation table.
type QueryBuilder struct {
	table   *recon.Table
	schema  map[string]string
	layer   recon.Layer
	dialect *sqlrender.Dialect
	logger  log.Logger
}

// Option configures a QueryBuilder.
type Option func(*QueryBuilder)

// WithLogger sets the logger. Rendered queries are logged at info level.
func WithLogger(l log.Logger) Option {
	return func(b *QueryBuilder) {
		b.logger = log.NewLogger(l)
	}
}

// New creates a QueryBuilder. schema describes the layer's table; its
// column names are matched case-insensitively. An unknown dialect is a
// configuration error.
func New(table *recon.Table, schema []recon.Schema, layer recon.Layer, dialect string, opts ...Option) (*QueryBuilder, error) {
	if table == nil {
		return nil, fmt.Errorf("query builder: nil table")
	}
	d, err := sqlrender.Lookup(dialect)
	if err != nil {
		ce := recon.NewUnsupportedDialectError(dialect)
		ce.Table = table.SourceName()
		return nil, ce
	}

	b := &QueryBuilder{
		table:   table,
		schema:  make(map[string]string, len(schema)),
		layer:   layer,
		dialect: d,
		logger:  &log.NoopLogger{},
	}
	for _, s := range schema {
		n := recon.NewSchema(s.ColumnName, s.DataType)
		b.schema[n.ColumnName] = n.DataType
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithFields(log.Fields{
		log.ModuleField:  "querybuilder",
		log.TableField:   table.SourceName(),
		log.LayerField:   layer.String(),
		log.DialectField: d.Name,
	})
	return b, nil
}

// Dialect returns the name of the builder's dialect.
func (b *QueryBuilder) Dialect() string { return b.dialect.Name }

// Layer returns the builder's layer.
func (b *QueryBuilder) Layer() recon.Layer { return b.layer }

// Table returns the table the builder was created for.
func (b *QueryBuilder) Table() *recon.Table { return b.table }

// schemaList rebuilds the schema as a slice for the table accessors.
func (b *QueryBuilder) schemaList() []recon.Schema {
	out := make([]recon.Schema, 0, len(b.schema))
	for name, typ := range b.schema {
		out = append(out, recon.Schema{ColumnName: name, DataType: typ})
	}
	return out
}

// projection is a normalized column aliased to its source-side name.
type projection struct {
	alias string
	expr  sqlexpr.Expr
}

// normalized returns the projection for col, a name in the builder's
// layer vocabulary: the layer's transformation if configured, otherwise
// the normalization chain for the column's dialect and type.
func (b *QueryBuilder) normalized(col string) projection {
	alias := b.table.Resolver().ReverseOne(col, b.layer)
	if expr, ok := b.table.Transformation(col, b.layer); ok {
		return projection{alias: alias, expr: &sqlexpr.Raw{SQL: expr}}
	}
	return projection{
		alias: alias,
		expr:  rules.Normalize(sqlexpr.Col(col, ""), b.dialect.Name, b.schema[col]),
	}
}

// normalizedAll returns projections for cols ordered by alias.
func (b *QueryBuilder) normalizedAll(cols recon.ColumnSet) []projection {
	out := make([]projection, 0, len(cols))
	for col := range cols {
		out = append(out, b.normalized(col))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].alias < out[j].alias })
	return out
}

// filter returns the layer's filter as a WHERE expression, or nil.
func (b *QueryBuilder) filter() sqlexpr.Expr {
	if f := b.table.Filter(b.layer); f != "" {
		return &sqlexpr.Raw{SQL: f}
	}
	return nil
}

// sourceJoinColumns returns the sorted join columns in the source
// vocabulary, or a configuration error when there are none.
func (b *QueryBuilder) sourceJoinColumns() ([]string, error) {
	cols := b.table.JoinColumns(recon.Source).Sorted()
	if len(cols) == 0 {
		return nil, &recon.ConfigError{
			Code:    recon.ErrCodeMissingJoinColumns,
			Message: "join columns are required",
			Table:   b.table.SourceName(),
		}
	}
	return cols, nil
}

// configError attaches the table name to ConfigErrors.
func (b *QueryBuilder) configError(err error) error {
	if ce, ok := err.(*recon.ConfigError); ok && ce.Table == "" {
		c := *ce
		c.Table = b.table.SourceName()
		return &c
	}
	return err
}

func (b *QueryBuilder) render(kind Kind, q sqlexpr.Query, d *sqlrender.Dialect) (string, error) {
	sql, err := sqlrender.Render(q, d)
	if err != nil {
		return "", fmt.Errorf("render %s query: %w", kind, err)
	}
	b.logger.Info(string(kind)+" query", log.Fields{log.KindField: string(kind), "query": sql})
	return sql, nil
}
