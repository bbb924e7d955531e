// Package transform rewrites expressions by wrapping column references in
// normalization and hashing functions.
//
// Every column-level transform picks one of two strategies by inspecting
// its input:
//
//   - terminal: the input is exactly a *sqlexpr.Column, and the result is
//     the wrapper applied to a fresh copy of that column;
//   - structural: anything else is deep-copied and every operand inside it
//     is replaced by the wrapper applied to that operand. Operands are column
//     references and Template nodes; a Template is wrapped whole, so a
//     second pass composes with the first instead of reaching into it.
//     Operators and literals are left as they are. Raw nodes are opaque.
//
// The Wrap variants skip the strategy dispatch and wrap the whole input
// expression instead.
package transform

import (
	"fmt"

	"github.com/roach88/recon/internal/sqlexpr"
)

// Func rewrites an expression. Implementations never modify their input.
type Func func(sqlexpr.Expr) sqlexpr.Expr

// apply dispatches between the terminal and structural strategies.
func apply(e sqlexpr.Expr, wrap func(operand sqlexpr.Expr) sqlexpr.Expr) sqlexpr.Expr {
	switch e.(type) {
	case *sqlexpr.Column, *sqlexpr.Template:
		return wrap(sqlexpr.Copy(e))
	}
	return sqlexpr.ReplaceOperands(e, wrap)
}

// call returns a column-level transform wrapping columns in kind(col, extra...).
func call(kind sqlexpr.FuncKind, extra ...sqlexpr.Expr) Func {
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return apply(e, func(operand sqlexpr.Expr) sqlexpr.Expr {
			args := make([]sqlexpr.Expr, 0, 1+len(extra))
			args = append(args, operand)
			for _, x := range extra {
				args = append(args, sqlexpr.Copy(x))
			}
			return sqlexpr.Call(kind, args...)
		})
	}
}

// Concat joins exprs with the dialect's string concatenation. The operands
// are copied.
func Concat(exprs ...sqlexpr.Expr) sqlexpr.Expr {
	args := make([]sqlexpr.Expr, len(exprs))
	for i, e := range exprs {
		args[i] = sqlexpr.Copy(e)
	}
	return sqlexpr.Call(sqlexpr.FuncConcat, args...)
}

// SHA2 wraps each column in SHA2(col, bits).
func SHA2(bits string) Func {
	return call(sqlexpr.FuncSHA2, sqlexpr.Num(bits))
}

// WrapSHA2 wraps the whole expression in SHA2(expr, bits).
func WrapSHA2(bits string) Func {
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return sqlexpr.Call(sqlexpr.FuncSHA2, sqlexpr.Copy(e), sqlexpr.Num(bits))
	}
}

// Lower wraps each column in LOWER(col).
func Lower() Func {
	return call(sqlexpr.FuncLower)
}

// WrapLower wraps the whole expression in LOWER(expr).
func WrapLower() Func {
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return sqlexpr.Call(sqlexpr.FuncLower, sqlexpr.Copy(e))
	}
}

// Coalesce wraps each column in COALESCE(col, def). isString selects a
// string literal default over a numeric one.
func Coalesce(def string, isString bool) Func {
	lit := &sqlexpr.Literal{Value: def, IsString: isString}
	return call(sqlexpr.FuncCoalesce, lit)
}

// Trim wraps each column in TRIM(col).
func Trim() Func {
	return call(sqlexpr.FuncTrim)
}

// JSONFormat wraps each column in the dialect's JSON serialization function.
func JSONFormat() Func {
	return call(sqlexpr.FuncJSONFormat)
}

// SortArray wraps each column in SORT_ARRAY(col, asc).
func SortArray(asc bool) Func {
	return call(sqlexpr.FuncSortArray, &sqlexpr.Boolean{Value: asc})
}

// ToChar wraps each column in TO_CHAR. The nls parameter is only used
// together with a format; empty strings omit the argument.
func ToChar(format, nls string) Func {
	if format == "" {
		return call(sqlexpr.FuncToChar)
	}
	if nls == "" {
		return call(sqlexpr.FuncToChar, sqlexpr.Str(format))
	}
	return call(sqlexpr.FuncToChar, sqlexpr.Str(format), sqlexpr.Str(nls))
}

// ArrayToString joins each array column with delimiter. An empty
// nullReplacement leaves NULL elements to the dialect default.
func ArrayToString(delimiter, nullReplacement string) Func {
	if nullReplacement == "" {
		return call(sqlexpr.FuncArrayToString, sqlexpr.Str(delimiter))
	}
	return call(sqlexpr.FuncArrayToString, sqlexpr.Str(delimiter), sqlexpr.Str(nullReplacement))
}

// ArraySort wraps each column in ARRAY_SORT(col, asc).
func ArraySort(asc bool) Func {
	return call(sqlexpr.FuncArraySort, &sqlexpr.Boolean{Value: asc})
}

// Anonymous injects each column, by qualified name, into a SQL template
// with a single "{}" placeholder. It covers vendor functions that have no
// node of their own. A malformed template panics when Anonymous is called.
func Anonymous(template string) Func {
	sqlexpr.NewTemplate(template, nil)
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return apply(e, func(operand sqlexpr.Expr) sqlexpr.Expr {
			return sqlexpr.NewTemplate(template, operand)
		})
	}
}

// WrapAnonymous injects the whole expression into template.
func WrapAnonymous(template string) Func {
	sqlexpr.NewTemplate(template, nil)
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return sqlexpr.NewTemplate(template, sqlexpr.Copy(e))
	}
}

// Expression applies funcs left to right, each to the result of the one
// before. Column-level transforms after the first therefore wrap the
// column inside the earlier wrapper. A chain that yields an invalid tree
// is a programming error and panics.
func Expression(e sqlexpr.Expr, funcs ...Func) sqlexpr.Expr {
	for _, f := range funcs {
		e = f(e)
	}
	if err := sqlexpr.Validate(e); err != nil {
		panic(fmt.Sprintf("transform: chain produced an invalid expression: %v", err))
	}
	return e
}

// Chain composes funcs into one Func with the same order as Expression.
func Chain(funcs ...Func) Func {
	return func(e sqlexpr.Expr) sqlexpr.Expr {
		return Expression(e, funcs...)
	}
}
