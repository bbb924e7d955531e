package sqlexpr

// Query is a statement that produces rows.
//
// This is a sealed interface - only Select and Union implement it.
type Query interface {
	queryNode()
}

// TableRef is a table or CTE reference with an optional alias.
type TableRef struct {
	Name  string
	Alias string
}

// JoinKind enumerates supported join kinds.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinFull
)

// String returns the SQL keyword sequence for the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinFull:
		return "FULL OUTER JOIN"
	default:
		return "INNER JOIN"
	}
}

// Join joins Table on the On condition.
type Join struct {
	Kind  JoinKind
	Table *TableRef
	On    Expr
}

// CTE is a named subquery in a WITH clause.
type CTE struct {
	Name  string
	Query Query
}

// Select is a SELECT statement.
//
// Semantics:
//
//	[WITH <with>] SELECT <projections> [FROM <from>] [<joins>] [WHERE <where>]
//
// A nil From means no FROM clause; dialects that require one supply their
// dummy table at render time.
type Select struct {
	With        []*CTE
	Projections []Expr
	From        *TableRef
	Joins       []*Join
	Where       Expr
}

func (*Select) queryNode() {}

// Union combines two queries. All=false deduplicates rows.
type Union struct {
	Left  Query
	Right Query
	All   bool
}

func (*Union) queryNode() {}

// UnionOf folds queries with UNION (All=false) or UNION ALL, left-associative.
// Returns nil when no queries are given.
func UnionOf(all bool, queries ...Query) Query {
	if len(queries) == 0 {
		return nil
	}
	out := queries[0]
	for _, q := range queries[1:] {
		out = &Union{Left: out, Right: q, All: all}
	}
	return out
}
