package sqlexpr

// Walk visits e and its children in depth-first pre-order. If fn returns
// false the children of that node are skipped. Raw and Template nodes are
// leaves.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Func:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Paren:
		Walk(n.Inner, fn)
	case *Case:
		for _, w := range n.Whens {
			Walk(w.Cond, fn)
			Walk(w.Then, fn)
		}
		Walk(n.Else, fn)
	case *If:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)
	case *Between:
		Walk(n.Expr, fn)
		Walk(n.Low, fn)
		Walk(n.High, fn)
	case *Alias:
		Walk(n.Expr, fn)
	}
}

// Columns returns every column reference in e in visit order.
func Columns(e Expr) []*Column {
	var cols []*Column
	Walk(e, func(n Expr) bool {
		if c, ok := n.(*Column); ok {
			cols = append(cols, c)
		}
		return true
	})
	return cols
}

// Transform rebuilds e bottom-up. Each node is rebuilt from its transformed
// children and then passed to fn, whose result takes its place. The result
// of fn is not visited again, so fn may wrap the node it receives.
//
// The input tree is never modified. Transform(e, nil) is a deep copy.
func Transform(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	var out Expr
	switch n := e.(type) {
	case *Column:
		c := *n
		out = &c
	case *Identifier:
		c := *n
		out = &c
	case *Literal:
		c := *n
		out = &c
	case *Null:
		out = &Null{}
	case *Boolean:
		c := *n
		out = &c
	case *Raw:
		c := *n
		out = &c
	case *Template:
		// opaque: the argument is copied but not visited
		out = &Template{Format: n.Format, Arg: Transform(n.Arg, nil)}
	case *Func:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Transform(a, fn)
		}
		out = &Func{Kind: n.Kind, Args: args}
	case *Binary:
		out = &Binary{Op: n.Op, Left: Transform(n.Left, fn), Right: Transform(n.Right, fn)}
	case *Paren:
		out = &Paren{Inner: Transform(n.Inner, fn)}
	case *Case:
		whens := make([]When, len(n.Whens))
		for i, w := range n.Whens {
			whens[i] = When{Cond: Transform(w.Cond, fn), Then: Transform(w.Then, fn)}
		}
		out = &Case{Whens: whens, Else: Transform(n.Else, fn)}
	case *If:
		out = &If{Cond: Transform(n.Cond, fn), Then: Transform(n.Then, fn), Else: Transform(n.Else, fn)}
	case *Between:
		out = &Between{Expr: Transform(n.Expr, fn), Low: Transform(n.Low, fn), High: Transform(n.High, fn)}
	case *Alias:
		out = &Alias{Expr: Transform(n.Expr, fn), Name: n.Name, Quoted: n.Quoted}
	default:
		return e
	}
	if fn == nil {
		return out
	}
	return fn(out)
}

// Copy returns a deep copy of e.
func Copy(e Expr) Expr {
	return Transform(e, nil)
}

// ReplaceOperands returns a copy of e with every column reference and every
// Template node replaced by the result of fn. A Template counts as a single
// operand: its argument is not visited, but the whole node is handed to fn.
// Columns inside Raw nodes are untouched.
func ReplaceOperands(e Expr, fn func(Expr) Expr) Expr {
	return Transform(e, func(n Expr) Expr {
		switch n.(type) {
		case *Column, *Template:
			return fn(n)
		}
		return n
	})
}
