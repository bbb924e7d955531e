package sqlexpr

import "strings"

// Expr is a scalar SQL expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode()
}

// Column is a column reference, optionally qualified by a table alias.
type Column struct {
	Name   string
	Table  string
	Quoted bool
}

func (*Column) exprNode() {}

// QualifiedName returns "table.name" or "name" when no table is set.
func (c *Column) QualifiedName() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Identifier is a bare identifier used as a value, e.g. a quoted label.
type Identifier struct {
	Name   string
	Quoted bool
}

func (*Identifier) exprNode() {}

// Literal is a string or numeric literal.
// Numeric literals are rendered as-is.
type Literal struct {
	Value    string
	IsString bool
}

func (*Literal) exprNode() {}

// Null is the SQL NULL literal.
type Null struct{}

func (*Null) exprNode() {}

// Boolean is a TRUE/FALSE literal.
type Boolean struct {
	Value bool
}

func (*Boolean) exprNode() {}

// Raw is SQL text emitted verbatim. Used for predicates and column
// expressions supplied by configuration.
type Raw struct {
	SQL string
}

func (*Raw) exprNode() {}

// Placeholder is the argument marker inside a Template format.
const Placeholder = "{}"

// Template renders Arg in place of the single "{}" inside Format.
// Used for vendor functions without a node of their own.
type Template struct {
	Format string
	Arg    Expr
}

func (*Template) exprNode() {}

// FuncKind enumerates the function calls the tree can express.
type FuncKind int

const (
	FuncCoalesce FuncKind = iota
	FuncTrim
	FuncLower
	FuncSHA2
	FuncConcat
	FuncJSONFormat
	FuncSortArray
	FuncToChar
	FuncArrayToString
	FuncArraySort
)

var funcNames = map[FuncKind]string{
	FuncCoalesce:      "COALESCE",
	FuncTrim:          "TRIM",
	FuncLower:         "LOWER",
	FuncSHA2:          "SHA2",
	FuncConcat:        "CONCAT",
	FuncJSONFormat:    "JSON_FORMAT",
	FuncSortArray:     "SORT_ARRAY",
	FuncToChar:        "TO_CHAR",
	FuncArrayToString: "ARRAY_TO_STRING",
	FuncArraySort:     "ARRAY_SORT",
}

// String returns the generic upper-case function name.
func (k FuncKind) String() string {
	if name, ok := funcNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Func is a function call. Args[0] is the wrapped expression for every
// kind except FuncConcat, whose Args are the concatenated operands.
//
// Argument layout per kind:
//
//	FuncCoalesce       expr, default...
//	FuncTrim           expr
//	FuncLower          expr
//	FuncSHA2           expr, bits (numeric Literal)
//	FuncConcat         operands...
//	FuncJSONFormat     expr
//	FuncSortArray      expr, asc (Boolean)
//	FuncToChar         expr [, format [, nls_param]]
//	FuncArrayToString  expr, delimiter [, null_replacement]
//	FuncArraySort      expr, asc (Boolean)
type Func struct {
	Kind FuncKind
	Args []Expr
}

func (*Func) exprNode() {}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEQ
	OpNEQ
	OpNullSafeEQ
	OpAnd
	OpOr
	OpIs
)

var opSymbols = map[BinaryOp]string{
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpEQ:         "=",
	OpNEQ:        "<>",
	OpNullSafeEQ: "<=>",
	OpAnd:        "AND",
	OpOr:         "OR",
	OpIs:         "IS",
}

// String returns the generic operator symbol.
func (op BinaryOp) String() string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	return "?"
}

// Binary is a binary operator application.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Paren wraps an expression in parentheses.
type Paren struct {
	Inner Expr
}

func (*Paren) exprNode() {}

// When is one branch of a Case.
type When struct {
	Cond Expr
	Then Expr
}

// Case is a searched CASE expression. Else may be nil.
type Case struct {
	Whens []When
	Else  Expr
}

func (*Case) exprNode() {}

// If is a two-way conditional. Else may be nil.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}

// Between is "expr BETWEEN low AND high".
type Between struct {
	Expr Expr
	Low  Expr
	High Expr
}

func (*Between) exprNode() {}

// Alias names an expression in a projection list.
type Alias struct {
	Expr   Expr
	Name   string
	Quoted bool
}

func (*Alias) exprNode() {}

// Col builds a column reference. An empty table leaves it unqualified.
func Col(name, table string) *Column {
	return &Column{Name: name, Table: table}
}

// Str builds a string literal.
func Str(v string) *Literal {
	return &Literal{Value: v, IsString: true}
}

// Num builds a numeric literal.
func Num(v string) *Literal {
	return &Literal{Value: v}
}

// As aliases e.
func As(e Expr, name string) *Alias {
	return &Alias{Expr: e, Name: name}
}

// Bin builds a binary node.
func Bin(op BinaryOp, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// Call builds a function node.
func Call(kind FuncKind, args ...Expr) *Func {
	return &Func{Kind: kind, Args: args}
}

// NewTemplate builds a Template node. The format must contain exactly one
// placeholder; anything else is a programming error and panics.
func NewTemplate(format string, arg Expr) *Template {
	if n := strings.Count(format, Placeholder); n != 1 {
		panic("sqlexpr: template " + format + " must contain exactly one " + Placeholder)
	}
	return &Template{Format: format, Arg: arg}
}

// AndAll folds conditions with AND, left-associative. Returns nil for none.
func AndAll(conds ...Expr) Expr {
	return fold(OpAnd, conds)
}

// OrAll folds conditions with OR, left-associative. Returns nil for none.
func OrAll(conds ...Expr) Expr {
	return fold(OpOr, conds)
}

func fold(op BinaryOp, conds []Expr) Expr {
	if len(conds) == 0 {
		return nil
	}
	out := conds[0]
	for _, c := range conds[1:] {
		out = Bin(op, out, c)
	}
	return out
}
