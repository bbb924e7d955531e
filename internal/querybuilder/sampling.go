package querybuilder

import (
	"fmt"

	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/rules"
	"github.com/roach88/recon/internal/sqlexpr"
)

// BuildSamplingQuery builds a query that fetches the layer's rows whose
// join keys appear in keys, normalized and aliased to source-side names.
//
// The key rows become a "recon" CTE of literal selects combined with
// UNION, which drops duplicate key tuples. The layer table becomes a
// "src" CTE over TablePlaceholder. The two are joined with null-safe
// equality on the default-normalized join columns.
func (b *QueryBuilder) BuildSamplingQuery(keys recon.SampleKeys) (string, error) {
	if err := keys.Validate(); err != nil {
		return "", b.configError(err)
	}
	joinCols, err := b.sourceJoinColumns()
	if err != nil {
		return "", err
	}

	reconCTE, err := b.keysQuery(keys, joinCols)
	if err != nil {
		return "", err
	}

	// the join against recon needs the join columns even when the select
	// list leaves them out
	cols := b.table.SelectColumns(b.schemaList(), b.layer).
		Union(b.table.JoinColumns(b.layer)).
		Minus(b.table.DropColumns(b.layer))
	projs := b.normalizedAll(cols)

	srcSelect := &sqlexpr.Select{
		From:  fromClause(TablePlaceholder, ""),
		Where: b.filter(),
	}
	outer := make([]sqlexpr.Expr, 0, len(projs))
	for _, p := range projs {
		srcSelect.Projections = append(srcSelect.Projections, sqlexpr.As(p.expr, p.alias))
		outer = append(outer, sqlexpr.Col(p.alias, "src"))
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("table %s: no columns left to select after drops", b.table.SourceName())
	}

	q := &sqlexpr.Select{
		With: []*sqlexpr.CTE{
			{Name: "recon", Query: reconCTE},
			{Name: "src", Query: srcSelect},
		},
		Projections: outer,
		From:        fromClause("src", ""),
		Joins: []*sqlexpr.Join{
			nullSafeJoin(sqlexpr.JoinInner, fromClause("recon", "recon"), joinCols, "src", "recon", rules.NormalizeDefault),
		},
	}
	return b.render(KindSampling, q, b.dialect)
}

// keysQuery renders one literal select per key row, UNIONed together.
func (b *QueryBuilder) keysQuery(keys recon.SampleKeys, joinCols []string) (sqlexpr.Query, error) {
	idx := make([]int, len(joinCols))
	for i, c := range joinCols {
		idx[i] = keys.Index(c)
		if idx[i] < 0 {
			return nil, &recon.ConfigError{
				Code:    recon.ErrCodeMissingJoinColumns,
				Message: "sample keys lack a join column",
				Table:   b.table.SourceName(),
				Column:  c,
			}
		}
	}

	rows := make([]sqlexpr.Query, 0, len(keys.Rows))
	for r, row := range keys.Rows {
		sel := &sqlexpr.Select{}
		for i, c := range joinCols {
			lit, err := keyLiteral(row[idx[i]])
			if err != nil {
				return nil, fmt.Errorf("sample key row %d, column %s: %w", r, c, err)
			}
			sel.Projections = append(sel.Projections, sqlexpr.As(lit, c))
		}
		rows = append(rows, sel)
	}
	return sqlexpr.UnionOf(false, rows...), nil
}
