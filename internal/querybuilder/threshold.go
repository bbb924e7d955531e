package querybuilder

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/sqlexpr"
	"github.com/roach88/recon/internal/sqlrender"
	"github.com/roach88/recon/internal/transform"
)

// Threshold view aliases and suffixes. The comparison runs over two views
// registered by the caller, named after the source and target tables.
const (
	ThresholdSourceAlias = "source"
	ThresholdTargetAlias = "databricks"
	ThresholdViewSuffix  = "_df_threshold_vw"
)

// Match classification labels.
const (
	LabelMatch   = "Match"
	LabelWarning = "Warning"
	LabelFailed  = "Failed"
)

// BuildThresholdQuery builds the query classifying every thresholded
// column as Match, Warning or Failed.
//
// The query is always rendered for databricks, where the comparison views
// live, whatever the builder's dialect. Only rows where at least one
// thresholded column differs are returned.
func (b *QueryBuilder) BuildThresholdQuery() (string, error) {
	joinCols, err := b.sourceJoinColumns()
	if err != nil {
		return "", err
	}

	var (
		projections []sqlexpr.Expr
		mismatches  []sqlexpr.Expr
	)
	for _, th := range b.table.Thresholds() {
		projs, mismatch, err := thresholdColumn(th)
		if err != nil {
			return "", b.configError(err)
		}
		projections = append(projections, projs...)
		mismatches = append(mismatches, mismatch)
	}
	for _, c := range joinCols {
		projections = append(projections, sqlexpr.As(sqlexpr.Col(c, ThresholdSourceAlias), c+"_source"))
	}

	q := &sqlexpr.Select{
		Projections: projections,
		From:        fromClause(b.table.SourceName()+ThresholdViewSuffix, ThresholdSourceAlias),
		Joins: []*sqlexpr.Join{
			nullSafeJoin(sqlexpr.JoinInner,
				fromClause(b.table.TargetName()+ThresholdViewSuffix, ThresholdTargetAlias),
				joinCols, ThresholdSourceAlias, ThresholdTargetAlias, nil),
		},
		Where: anyOf(mismatches),
	}
	return b.render(KindThreshold, q, sqlrender.MustLookup(sqlrender.Databricks))
}

// thresholdColumn returns the source, target and match projections for one
// threshold and the predicate that keeps rows where the column differs.
func thresholdColumn(th recon.Thresholds) ([]sqlexpr.Expr, sqlexpr.Expr, error) {
	mode, err := th.Mode()
	if err != nil {
		return nil, nil, err
	}
	lower, upper, err := th.Bounds()
	if err != nil {
		return nil, nil, err
	}

	col := th.ColumnName
	zero := transform.Coalesce("0", false)
	base := zero(sub(col, ThresholdSourceAlias, ThresholdTargetAlias))
	srcProj := zero(sqlexpr.As(sqlexpr.Col(col, ThresholdSourceAlias), col+"_source"))
	tgtProj := zero(sqlexpr.As(sqlexpr.Col(col, ThresholdTargetAlias), col+"_databricks"))

	if mode == recon.DateTime {
		epoch := transform.Anonymous("unix_timestamp({})")
		base, srcProj, tgtProj = epoch(base), epoch(srcProj), epoch(tgtProj)
	}

	var match sqlexpr.Expr
	switch mode {
	case recon.NumberPercentage:
		match = percentageCase(base, col, lower, upper)
	default:
		match = absoluteCase(base, lower, upper)
	}

	mismatch := sqlexpr.Bin(sqlexpr.OpNEQ, sqlexpr.Copy(base), sqlexpr.Num("0"))
	return []sqlexpr.Expr{srcProj, tgtProj, sqlexpr.As(match, col+"_match")}, mismatch, nil
}

// classify builds CASE WHEN base = 0 THEN 'Match' WHEN measure BETWEEN
// lower AND upper THEN 'Warning' ELSE 'Failed' END.
func classify(base, measure sqlexpr.Expr, lower, upper decimal.Decimal) sqlexpr.Expr {
	return &sqlexpr.Case{
		Whens: []sqlexpr.When{
			{
				Cond: sqlexpr.Bin(sqlexpr.OpEQ, sqlexpr.Copy(base), sqlexpr.Num("0")),
				Then: sqlexpr.Str(LabelMatch),
			},
			{
				Cond: between(measure, sqlexpr.Num(lower.String()), sqlexpr.Num(upper.String())),
				Then: sqlexpr.Str(LabelWarning),
			},
		},
		Else: sqlexpr.Str(LabelFailed),
	}
}

func absoluteCase(base sqlexpr.Expr, lower, upper decimal.Decimal) sqlexpr.Expr {
	return classify(base, sqlexpr.Copy(base), lower, upper)
}

// percentageCase measures the difference relative to the target value. A
// zero or NULL target is replaced by 1 so the division cannot fail; the
// Match test still looks at the raw difference.
func percentageCase(base sqlexpr.Expr, col string, lower, upper decimal.Decimal) sqlexpr.Expr {
	target := func() sqlexpr.Expr { return sqlexpr.Col(col, ThresholdTargetAlias) }
	denominator := ifExpr(
		sqlexpr.Bin(sqlexpr.OpOr,
			sqlexpr.Bin(sqlexpr.OpEQ, target(), sqlexpr.Num("0")),
			sqlexpr.Bin(sqlexpr.OpIs, target(), &sqlexpr.Null{}),
		),
		sqlexpr.Num("1"),
		target(),
	)
	percentage := sqlexpr.Bin(sqlexpr.OpMul,
		&sqlexpr.Paren{Inner: sqlexpr.Bin(sqlexpr.OpDiv, sqlexpr.Copy(base), denominator)},
		sqlexpr.Num("100"),
	)
	return classify(base, percentage, lower, upper)
}
