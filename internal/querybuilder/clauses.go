package querybuilder

import (
	"github.com/roach88/recon/internal/sqlexpr"
)

// fromClause references a table or CTE with an optional alias.
func fromClause(name, alias string) *sqlexpr.TableRef {
	return &sqlexpr.TableRef{Name: name, Alias: alias}
}

// nullSafeJoin joins table on the conjunction of null-safe equalities over
// cols, qualified by the left and right aliases. wrap, when not nil, is
// applied to both sides of every equality.
func nullSafeJoin(kind sqlexpr.JoinKind, table *sqlexpr.TableRef, cols []string, left, right string, wrap func(sqlexpr.Expr) sqlexpr.Expr) *sqlexpr.Join {
	conds := make([]sqlexpr.Expr, len(cols))
	for i, c := range cols {
		var l, r sqlexpr.Expr = sqlexpr.Col(c, left), sqlexpr.Col(c, right)
		if wrap != nil {
			l, r = wrap(l), wrap(r)
		}
		conds[i] = sqlexpr.Bin(sqlexpr.OpNullSafeEQ, l, r)
	}
	return &sqlexpr.Join{Kind: kind, Table: table, On: sqlexpr.AndAll(conds...)}
}

// sub builds "(leftTable.col - rightTable.col)".
func sub(col, leftTable, rightTable string) sqlexpr.Expr {
	return &sqlexpr.Paren{Inner: sqlexpr.Bin(sqlexpr.OpSub,
		sqlexpr.Col(col, leftTable), sqlexpr.Col(col, rightTable))}
}

// tautology is the WHERE used when there are no predicates to combine.
func tautology() sqlexpr.Expr {
	one := func() sqlexpr.Expr { return sqlexpr.Bin(sqlexpr.OpEQ, sqlexpr.Num("1"), sqlexpr.Num("1")) }
	return &sqlexpr.Paren{Inner: sqlexpr.Bin(sqlexpr.OpOr, one(), one())}
}

// anyOf ORs preds together, falling back to the tautology when empty.
func anyOf(preds []sqlexpr.Expr) sqlexpr.Expr {
	if len(preds) == 0 {
		return tautology()
	}
	return sqlexpr.OrAll(preds...)
}

func ifExpr(cond, then, els sqlexpr.Expr) *sqlexpr.If {
	return &sqlexpr.If{Cond: cond, Then: then, Else: els}
}

func between(e, low, high sqlexpr.Expr) *sqlexpr.Between {
	return &sqlexpr.Between{Expr: e, Low: low, High: high}
}
