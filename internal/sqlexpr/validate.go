package sqlexpr

import (
	"fmt"
	"strings"
)

// Validate checks that e is a well-formed expression tree: no nil children
// where one is required, function arities within bounds, and templates with
// a single placeholder.
//
// Validate is a pure function with no side effects.
func Validate(e Expr) error {
	v := &validator{}
	v.expr(e, "root")
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid expression: %s", strings.Join(v.problems, "; "))
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// arity bounds per function kind; max < 0 means unbounded.
var funcArity = map[FuncKind][2]int{
	FuncCoalesce:      {1, -1},
	FuncTrim:          {1, 1},
	FuncLower:         {1, 1},
	FuncSHA2:          {2, 2},
	FuncConcat:        {1, -1},
	FuncJSONFormat:    {1, 1},
	FuncSortArray:     {2, 2},
	FuncToChar:        {1, 3},
	FuncArrayToString: {2, 3},
	FuncArraySort:     {2, 2},
}

func (v *validator) expr(e Expr, path string) {
	if e == nil {
		v.addProblem("%s: nil expression", path)
		return
	}
	switch n := e.(type) {
	case *Column:
		if n.Name == "" {
			v.addProblem("%s: column without name", path)
		}
	case *Identifier, *Literal, *Null, *Boolean:
	case *Raw:
		if strings.TrimSpace(n.SQL) == "" {
			v.addProblem("%s: empty raw SQL", path)
		}
	case *Template:
		if strings.Count(n.Format, Placeholder) != 1 {
			v.addProblem("%s: template %q needs exactly one placeholder", path, n.Format)
		}
		v.expr(n.Arg, path+".arg")
	case *Func:
		bounds, ok := funcArity[n.Kind]
		if !ok {
			v.addProblem("%s: unknown function kind %d", path, n.Kind)
			return
		}
		if len(n.Args) < bounds[0] || (bounds[1] >= 0 && len(n.Args) > bounds[1]) {
			v.addProblem("%s: %s takes %d..%d arguments, got %d", path, n.Kind, bounds[0], bounds[1], len(n.Args))
		}
		for i, a := range n.Args {
			v.expr(a, fmt.Sprintf("%s.%s[%d]", path, n.Kind, i))
		}
	case *Binary:
		v.expr(n.Left, path+".left")
		v.expr(n.Right, path+".right")
	case *Paren:
		v.expr(n.Inner, path+".inner")
	case *Case:
		if len(n.Whens) == 0 {
			v.addProblem("%s: CASE without WHEN", path)
		}
		for i, w := range n.Whens {
			v.expr(w.Cond, fmt.Sprintf("%s.when[%d]", path, i))
			v.expr(w.Then, fmt.Sprintf("%s.then[%d]", path, i))
		}
		if n.Else != nil {
			v.expr(n.Else, path+".else")
		}
	case *If:
		v.expr(n.Cond, path+".cond")
		v.expr(n.Then, path+".then")
		if n.Else != nil {
			v.expr(n.Else, path+".else")
		}
	case *Between:
		v.expr(n.Expr, path+".expr")
		v.expr(n.Low, path+".low")
		v.expr(n.High, path+".high")
	case *Alias:
		if n.Name == "" {
			v.addProblem("%s: alias without name", path)
		}
		v.expr(n.Expr, path+".expr")
	default:
		v.addProblem("%s: unknown node type %T", path, e)
	}
}
