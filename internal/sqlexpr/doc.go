// Package sqlexpr provides the expression tree used to build reconciliation
// queries.
//
// The tree is a closed set of node kinds. Expr and Query are sealed
// interfaces using the marker method pattern, so renderers and evaluators can
// use exhaustive type switches:
//
//	switch n := e.(type) {
//	case *Column:
//	    // bare column reference
//	case *Func:
//	    // function call
//	default:
//	    // impossible outside this package
//	}
//
// SCALAR NODES:
//
//	Column, Identifier, Literal, Null, Boolean  leaves
//	Raw                                         verbatim SQL text (filters, overrides)
//	Template                                    single-placeholder SQL template around one argument
//	Func                                        function call from the FuncKind set
//	Binary, Paren, Case, If, Between, Alias     composite nodes
//
// QUERY NODES:
//
//	Select (with CTEs, FROM, joins, WHERE), Union, TableRef, Join, CTE
//
// Raw and Template are opaque to traversal: Walk and Transform never descend
// into them. A Template is still a node in its own right and is handed to the
// Transform callback whole, so ReplaceOperands can wrap it like a column.
//
// Nodes are pointers and are never mutated after construction by this
// package. Transform returns a rebuilt tree and leaves its input untouched.
package sqlexpr
