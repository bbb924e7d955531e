package sqlrender

import (
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/sqlexpr"
)

// Render converts a query tree to SQL text in dialect d.
//
// Output is a single line. Parentheses appear only where the tree has Paren
// nodes or where a construct requires them (CTE bodies, function calls).
func Render(q sqlexpr.Query, d *Dialect) (string, error) {
	if d == nil {
		return "", fmt.Errorf("render: nil dialect")
	}
	r := &renderer{d: d}
	if err := r.query(q); err != nil {
		return "", err
	}
	return r.sb.String(), nil
}

// RenderExpr converts a scalar expression to SQL text in dialect d.
func RenderExpr(e sqlexpr.Expr, d *Dialect) (string, error) {
	if d == nil {
		return "", fmt.Errorf("render: nil dialect")
	}
	r := &renderer{d: d}
	if err := r.expr(e); err != nil {
		return "", err
	}
	return r.sb.String(), nil
}

type renderer struct {
	d  *Dialect
	sb strings.Builder
}

func (r *renderer) write(parts ...string) {
	for _, p := range parts {
		r.sb.WriteString(p)
	}
}

func (r *renderer) query(q sqlexpr.Query) error {
	switch n := q.(type) {
	case *sqlexpr.Select:
		return r.selectStmt(n)
	case *sqlexpr.Union:
		if err := r.query(n.Left); err != nil {
			return err
		}
		if n.All {
			r.write(" UNION ALL ")
		} else {
			r.write(" UNION ")
		}
		return r.query(n.Right)
	case nil:
		return fmt.Errorf("render: nil query")
	default:
		return fmt.Errorf("render: unsupported query type %T", q)
	}
}

func (r *renderer) selectStmt(s *sqlexpr.Select) error {
	if len(s.With) > 0 {
		r.write("WITH ")
		for i, cte := range s.With {
			if i > 0 {
				r.write(", ")
			}
			r.write(cte.Name, " AS (")
			if err := r.query(cte.Query); err != nil {
				return fmt.Errorf("cte %s: %w", cte.Name, err)
			}
			r.write(")")
		}
		r.write(" ")
	}

	if len(s.Projections) == 0 {
		return fmt.Errorf("render: select without projections")
	}
	r.write("SELECT ")
	for i, p := range s.Projections {
		if i > 0 {
			r.write(", ")
		}
		if err := r.expr(p); err != nil {
			return fmt.Errorf("projection %d: %w", i, err)
		}
	}

	switch {
	case s.From != nil:
		r.write(" FROM ")
		r.tableRef(s.From)
	case r.d.DummyTable != "":
		r.write(" FROM ", r.d.DummyTable)
	}

	for _, j := range s.Joins {
		r.write(" ", j.Kind.String(), " ")
		r.tableRef(j.Table)
		if j.On != nil {
			r.write(" ON ")
			if err := r.expr(j.On); err != nil {
				return fmt.Errorf("join %s: %w", j.Table.Name, err)
			}
		}
	}

	if s.Where != nil {
		r.write(" WHERE ")
		if err := r.expr(s.Where); err != nil {
			return fmt.Errorf("where: %w", err)
		}
	}
	return nil
}

func (r *renderer) tableRef(t *sqlexpr.TableRef) {
	r.write(t.Name)
	if t.Alias == "" {
		return
	}
	if r.d.TableAliasAS {
		r.write(" AS ", t.Alias)
		return
	}
	r.write(" ", t.Alias)
}

func (r *renderer) ident(name string, quoted bool) {
	if !quoted {
		r.write(name)
		return
	}
	q := r.d.IdentQuote
	r.write(q, strings.ReplaceAll(name, q, q+q), q)
}

func (r *renderer) exprList(args []sqlexpr.Expr) error {
	for i, a := range args {
		if i > 0 {
			r.write(", ")
		}
		if err := r.expr(a); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) expr(e sqlexpr.Expr) error {
	switch n := e.(type) {
	case *sqlexpr.Column:
		if n.Table != "" {
			r.write(n.Table, ".")
		}
		r.ident(n.Name, n.Quoted)
	case *sqlexpr.Identifier:
		r.ident(n.Name, n.Quoted)
	case *sqlexpr.Literal:
		if n.IsString {
			r.write("'", strings.ReplaceAll(n.Value, "'", "''"), "'")
		} else {
			r.write(n.Value)
		}
	case *sqlexpr.Null:
		r.write("NULL")
	case *sqlexpr.Boolean:
		r.boolean(n.Value)
	case *sqlexpr.Raw:
		r.write(n.SQL)
	case *sqlexpr.Template:
		arg, err := RenderExpr(n.Arg, r.d)
		if err != nil {
			return err
		}
		r.write(strings.Replace(n.Format, sqlexpr.Placeholder, arg, 1))
	case *sqlexpr.Func:
		return r.function(n)
	case *sqlexpr.Binary:
		return r.binary(n)
	case *sqlexpr.Paren:
		r.write("(")
		if err := r.expr(n.Inner); err != nil {
			return err
		}
		r.write(")")
	case *sqlexpr.Case:
		return r.caseExpr(n.Whens, n.Else)
	case *sqlexpr.If:
		if !r.d.IfFunction {
			return r.caseExpr([]sqlexpr.When{{Cond: n.Cond, Then: n.Then}}, n.Else)
		}
		r.write("IF(")
		if err := r.exprList([]sqlexpr.Expr{n.Cond, n.Then}); err != nil {
			return err
		}
		r.write(", ")
		if n.Else == nil {
			r.write("NULL")
		} else if err := r.expr(n.Else); err != nil {
			return err
		}
		r.write(")")
	case *sqlexpr.Between:
		if err := r.expr(n.Expr); err != nil {
			return err
		}
		r.write(" BETWEEN ")
		if err := r.expr(n.Low); err != nil {
			return err
		}
		r.write(" AND ")
		return r.expr(n.High)
	case *sqlexpr.Alias:
		if err := r.expr(n.Expr); err != nil {
			return err
		}
		r.write(" AS ")
		r.ident(n.Name, n.Quoted)
	case nil:
		return fmt.Errorf("render: nil expression")
	default:
		return fmt.Errorf("render: unsupported expression type %T", e)
	}
	return nil
}

func (r *renderer) boolean(v bool) {
	switch {
	case r.d.NumericBooleans && v:
		r.write("1")
	case r.d.NumericBooleans:
		r.write("0")
	case v:
		r.write("TRUE")
	default:
		r.write("FALSE")
	}
}

func (r *renderer) caseExpr(whens []sqlexpr.When, els sqlexpr.Expr) error {
	r.write("CASE")
	for _, w := range whens {
		r.write(" WHEN ")
		if err := r.expr(w.Cond); err != nil {
			return err
		}
		r.write(" THEN ")
		if err := r.expr(w.Then); err != nil {
			return err
		}
	}
	if els != nil {
		r.write(" ELSE ")
		if err := r.expr(els); err != nil {
			return err
		}
	}
	r.write(" END")
	return nil
}

func (r *renderer) binary(b *sqlexpr.Binary) error {
	if b.Op == sqlexpr.OpNullSafeEQ {
		switch r.d.NullSafe {
		case NullSafeDistinct:
			return r.infix(b.Left, " IS NOT DISTINCT FROM ", b.Right)
		case NullSafeDecode:
			r.write("DECODE(")
			if err := r.exprList([]sqlexpr.Expr{b.Left, b.Right}); err != nil {
				return err
			}
			r.write(", 1, 0) = 1")
			return nil
		}
	}
	return r.infix(b.Left, " "+b.Op.String()+" ", b.Right)
}

func (r *renderer) infix(left sqlexpr.Expr, op string, right sqlexpr.Expr) error {
	if err := r.expr(left); err != nil {
		return err
	}
	r.write(op)
	return r.expr(right)
}

// function renders a call. Ascending sort flags are the default in every
// dialect and are left out; only descending order is spelled out.
func (r *renderer) function(f *sqlexpr.Func) error {
	args := f.Args
	switch f.Kind {
	case sqlexpr.FuncConcat:
		if r.d.ConcatOperator {
			for i, a := range args {
				if i > 0 {
					r.write(" || ")
				}
				if err := r.expr(a); err != nil {
					return err
				}
			}
			return nil
		}
	case sqlexpr.FuncSortArray, sqlexpr.FuncArraySort:
		if len(args) == 2 {
			if b, ok := args[1].(*sqlexpr.Boolean); ok && b.Value {
				args = args[:1]
			}
		}
	}

	r.write(r.d.FuncName(f.Kind), "(")
	if err := r.exprList(args); err != nil {
		return fmt.Errorf("%s: %w", f.Kind, err)
	}
	r.write(")")
	return nil
}
