package querybuilder

import (
	"fmt"
	"sort"

	"github.com/roach88/recon/internal/rules"
	"github.com/roach88/recon/internal/sqlexpr"
	"github.com/roach88/recon/internal/transform"
)

// HashColumn is the alias of the row hash projection.
const HashColumn = "hash_value_recon"

// BuildHashQuery builds the per-row hash query for the builder's layer.
//
// Every selected and join column that is neither thresholded nor dropped
// is normalized, ordered by its source-side name and concatenated. The
// dialect's hash function is applied to the concatenation and the result
// lower-cased. Join and partition columns follow as row keys.
func (b *QueryBuilder) BuildHashQuery() (string, error) {
	hashChain, err := rules.Hash(b.dialect.Name)
	if err != nil {
		return "", b.configError(err)
	}

	cols := b.table.SelectColumns(b.schemaList(), b.layer).
		Union(b.table.JoinColumns(b.layer)).
		Minus(b.table.ThresholdColumns(b.layer)).
		Minus(b.table.DropColumns(b.layer))
	projs := b.normalizedAll(cols)
	if len(projs) == 0 {
		return "", fmt.Errorf("table %s: no columns to hash", b.table.SourceName())
	}

	parts := make([]sqlexpr.Expr, len(projs))
	for i, p := range projs {
		parts[i] = p.expr
	}
	hash := transform.Expression(transform.Concat(parts...), append(hashChain, transform.WrapLower())...)

	projections := []sqlexpr.Expr{sqlexpr.As(hash, HashColumn)}
	projections = append(projections, b.keyProjections()...)

	q := &sqlexpr.Select{
		Projections: projections,
		From:        fromClause(TablePlaceholder, ""),
		Where:       b.filter(),
	}
	return b.render(KindHash, q, b.dialect)
}

// keyProjections returns the join and partition columns, normalized with
// the default chain and aliased to source-side names.
func (b *QueryBuilder) keyProjections() []sqlexpr.Expr {
	keys := b.table.JoinColumns(b.layer).Union(b.table.PartitionColumn(b.layer)).Sorted()
	out := make([]sqlexpr.Expr, len(keys))
	for i, k := range keys {
		alias := b.table.Resolver().ReverseOne(k, b.layer)
		out[i] = sqlexpr.As(rules.NormalizeDefault(sqlexpr.Col(k, "")), alias)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].(*sqlexpr.Alias).Name < out[j].(*sqlexpr.Alias).Name
	})
	return out
}
