package sqlexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	testCases := []struct {
		name string
		expr Expr
	}{
		{"column", Col("a", "t")},
		{"coalesce", Call(FuncCoalesce, Col("a", ""), Str(""))},
		{"sha2", Call(FuncSHA2, Col("a", ""), Num("256"))},
		{"concat many", Call(FuncConcat, Col("a", ""), Col("b", ""), Col("c", ""))},
		{"template", NewTemplate("unix_timestamp({})", Col("a", ""))},
		{"case", &Case{Whens: []When{{Cond: Bin(OpEQ, Col("a", ""), Num("0")), Then: Str("Match")}}}},
		{"if without else", &If{Cond: &Boolean{Value: true}, Then: Num("1")}},
		{"between", &Between{Expr: Col("a", ""), Low: Num("-5"), High: Num("5")}},
		{"raw", &Raw{SQL: "trim(s_address)"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, Validate(tc.expr))
		})
	}
}

func TestValidate_Problems(t *testing.T) {
	testCases := []struct {
		name    string
		expr    Expr
		wantErr string
	}{
		{"nil root", nil, "root: nil expression"},
		{"unnamed column", &Column{}, "column without name"},
		{"empty raw", &Raw{SQL: "  "}, "empty raw SQL"},
		{"trim arity", Call(FuncTrim), "TRIM takes 1..1 arguments, got 0"},
		{"sha2 arity", Call(FuncSHA2, Col("a", "")), "SHA2 takes 2..2 arguments, got 1"},
		{"nil binary side", Bin(OpAdd, Col("a", ""), nil), "root.right: nil expression"},
		{"empty case", &Case{}, "CASE without WHEN"},
		{"bad template", &Template{Format: "x", Arg: Col("a", "")}, "needs exactly one placeholder"},
		{"alias without name", &Alias{Expr: Col("a", "")}, "alias without name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	e := Bin(OpAnd, &Column{}, Call(FuncLower))
	err := Validate(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root.left: column without name")
	assert.Contains(t, err.Error(), "root.right: LOWER takes 1..1 arguments, got 0")
}
