// Package sqleval evaluates scalar expression trees against an in-memory
// row with SQL NULL semantics and exact decimal arithmetic.
//
// It covers the node kinds the query builders emit for comparisons and
// classification. Raw SQL is never evaluated; templates are evaluated only
// when a function is registered for their exact format.
package sqleval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/recon/internal/sqlexpr"
)

// Row maps column names to values. Qualified names ("source.amt") are
// looked up first, then the bare name.
//
// Values are nil (NULL), string, bool, time.Time, decimal.Decimal or any Go
// integer or float type. Numbers are evaluated as decimals.
type Row map[string]any

var (
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnsupported is returned for nodes the evaluator cannot interpret.
	ErrUnsupported = errors.New("unsupported expression")
)

// TemplateFunc evaluates a template given its evaluated argument.
type TemplateFunc func(arg any) (any, error)

// Evaluator evaluates expressions. The zero value is not usable; use New.
type Evaluator struct {
	templates map[string]TemplateFunc
}

// New returns an evaluator that knows the unix_timestamp template.
func New() *Evaluator {
	return &Evaluator{templates: map[string]TemplateFunc{
		"unix_timestamp({})": unixTimestamp,
	}}
}

// WithTemplate returns a copy of ev that evaluates format with fn.
func (ev *Evaluator) WithTemplate(format string, fn TemplateFunc) *Evaluator {
	out := &Evaluator{templates: make(map[string]TemplateFunc, len(ev.templates)+1)}
	for k, v := range ev.templates {
		out.templates[k] = v
	}
	out.templates[format] = fn
	return out
}

// Eval evaluates e against row with a default evaluator.
func Eval(e sqlexpr.Expr, row Row) (any, error) {
	return New().Eval(e, row)
}

// Eval evaluates e against row. The result is nil for NULL.
func (ev *Evaluator) Eval(e sqlexpr.Expr, row Row) (any, error) {
	switch n := e.(type) {
	case *sqlexpr.Column:
		if v, ok := row[n.QualifiedName()]; ok {
			return normalize(v)
		}
		if v, ok := row[n.Name]; ok {
			return normalize(v)
		}
		return nil, fmt.Errorf("unknown column %s", n.QualifiedName())
	case *sqlexpr.Literal:
		if n.IsString {
			return n.Value, nil
		}
		d, err := decimal.NewFromString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("numeric literal %q: %w", n.Value, err)
		}
		return d, nil
	case *sqlexpr.Identifier:
		return n.Name, nil
	case *sqlexpr.Null:
		return nil, nil
	case *sqlexpr.Boolean:
		return n.Value, nil
	case *sqlexpr.Paren:
		return ev.Eval(n.Inner, row)
	case *sqlexpr.Alias:
		return ev.Eval(n.Expr, row)
	case *sqlexpr.Template:
		fn, ok := ev.templates[n.Format]
		if !ok {
			return nil, fmt.Errorf("%w: template %q", ErrUnsupported, n.Format)
		}
		arg, err := ev.Eval(n.Arg, row)
		if err != nil {
			return nil, err
		}
		return fn(arg)
	case *sqlexpr.Func:
		return ev.function(n, row)
	case *sqlexpr.Binary:
		return ev.binary(n, row)
	case *sqlexpr.Case:
		for _, w := range n.Whens {
			ok, err := ev.truth(w.Cond, row)
			if err != nil {
				return nil, err
			}
			if ok {
				return ev.Eval(w.Then, row)
			}
		}
		if n.Else == nil {
			return nil, nil
		}
		return ev.Eval(n.Else, row)
	case *sqlexpr.If:
		ok, err := ev.truth(n.Cond, row)
		if err != nil {
			return nil, err
		}
		if ok {
			return ev.Eval(n.Then, row)
		}
		if n.Else == nil {
			return nil, nil
		}
		return ev.Eval(n.Else, row)
	case *sqlexpr.Between:
		return ev.between(n, row)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, e)
	}
}

// truth evaluates a condition; NULL counts as false.
func (ev *Evaluator) truth(e sqlexpr.Expr, row Row) (bool, error) {
	v, err := ev.Eval(e, row)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if v != nil && !ok {
		return false, fmt.Errorf("condition evaluated to %T, want bool", v)
	}
	return ok && b, nil
}

func (ev *Evaluator) function(f *sqlexpr.Func, row Row) (any, error) {
	args := make([]any, len(f.Args))
	for i, a := range f.Args {
		v, err := ev.Eval(a, row)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch f.Kind {
	case sqlexpr.FuncCoalesce:
		for _, a := range args {
			if a != nil {
				return a, nil
			}
		}
		return nil, nil
	case sqlexpr.FuncTrim, sqlexpr.FuncLower:
		if args[0] == nil {
			return nil, nil
		}
		s := text(args[0])
		if f.Kind == sqlexpr.FuncTrim {
			return strings.TrimSpace(s), nil
		}
		return strings.ToLower(s), nil
	case sqlexpr.FuncConcat:
		var sb strings.Builder
		for _, a := range args {
			if a == nil {
				return nil, nil
			}
			sb.WriteString(text(a))
		}
		return sb.String(), nil
	}
	return nil, fmt.Errorf("%w: function %s", ErrUnsupported, f.Kind)
}

func (ev *Evaluator) binary(b *sqlexpr.Binary, row Row) (any, error) {
	l, err := ev.Eval(b.Left, row)
	if err != nil {
		return nil, err
	}
	r, err := ev.Eval(b.Right, row)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case sqlexpr.OpAnd:
		return and(l, r)
	case sqlexpr.OpOr:
		return or(l, r)
	case sqlexpr.OpIs:
		if r != nil {
			return nil, fmt.Errorf("%w: IS with non-NULL operand", ErrUnsupported)
		}
		return l == nil, nil
	case sqlexpr.OpNullSafeEQ:
		if l == nil || r == nil {
			return l == nil && r == nil, nil
		}
		return equal(l, r)
	}

	if l == nil || r == nil {
		return nil, nil
	}

	switch b.Op {
	case sqlexpr.OpEQ:
		return equal(l, r)
	case sqlexpr.OpNEQ:
		eq, err := equal(l, r)
		if err != nil {
			return nil, err
		}
		return !eq, nil
	}

	ld, rd, err := numbers(l, r)
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", b.Op, err)
	}
	switch b.Op {
	case sqlexpr.OpAdd:
		return ld.Add(rd), nil
	case sqlexpr.OpSub:
		return ld.Sub(rd), nil
	case sqlexpr.OpMul:
		return ld.Mul(rd), nil
	case sqlexpr.OpDiv:
		if rd.IsZero() {
			return nil, ErrDivisionByZero
		}
		return ld.Div(rd), nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrUnsupported, b.Op)
}

func (ev *Evaluator) between(n *sqlexpr.Between, row Row) (any, error) {
	vals := make([]any, 3)
	for i, e := range []sqlexpr.Expr{n.Expr, n.Low, n.High} {
		v, err := ev.Eval(e, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		vals[i] = v
	}
	x, lo, err := numbers(vals[0], vals[1])
	if err != nil {
		return nil, fmt.Errorf("BETWEEN: %w", err)
	}
	_, hi, err := numbers(vals[0], vals[2])
	if err != nil {
		return nil, fmt.Errorf("BETWEEN: %w", err)
	}
	return x.GreaterThanOrEqual(lo) && x.LessThanOrEqual(hi), nil
}

// and implements three-valued AND.
func and(l, r any) (any, error) {
	lb, lok := l.(bool)
	rb, rok := r.(bool)
	if (l != nil && !lok) || (r != nil && !rok) {
		return nil, fmt.Errorf("AND over non-boolean operands %T, %T", l, r)
	}
	if (lok && !lb) || (rok && !rb) {
		return false, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return true, nil
}

// or implements three-valued OR.
func or(l, r any) (any, error) {
	lb, lok := l.(bool)
	rb, rok := r.(bool)
	if (l != nil && !lok) || (r != nil && !rok) {
		return nil, fmt.Errorf("OR over non-boolean operands %T, %T", l, r)
	}
	if (lok && lb) || (rok && rb) {
		return true, nil
	}
	if l == nil || r == nil {
		return nil, nil
	}
	return false, nil
}

func equal(l, r any) (bool, error) {
	switch lv := l.(type) {
	case decimal.Decimal:
		rv, ok := r.(decimal.Decimal)
		if !ok {
			return false, fmt.Errorf("compare number with %T", r)
		}
		return lv.Equal(rv), nil
	case string:
		rv, ok := r.(string)
		if !ok {
			return false, fmt.Errorf("compare string with %T", r)
		}
		return lv == rv, nil
	case bool:
		rv, ok := r.(bool)
		if !ok {
			return false, fmt.Errorf("compare bool with %T", r)
		}
		return lv == rv, nil
	}
	return false, fmt.Errorf("%w: comparison of %T", ErrUnsupported, l)
}

func numbers(l, r any) (decimal.Decimal, decimal.Decimal, error) {
	ld, ok := l.(decimal.Decimal)
	if !ok {
		return ld, decimal.Decimal{}, fmt.Errorf("operand %v (%T) is not a number", l, l)
	}
	rd, ok := r.(decimal.Decimal)
	if !ok {
		return ld, rd, fmt.Errorf("operand %v (%T) is not a number", r, r)
	}
	return ld, rd, nil
}

// text renders a value the way string functions see it.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

// normalize converts Go numbers in a row to decimals.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, time.Time, decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	}
	return nil, fmt.Errorf("%w: row value of type %T", ErrUnsupported, v)
}

func unixTimestamp(arg any) (any, error) {
	switch x := arg.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return decimal.NewFromInt(x.Unix()), nil
	}
	return nil, fmt.Errorf("unix_timestamp of %T", arg)
}
