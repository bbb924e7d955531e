package recon

import "sort"

// ColumnSet is an unordered set of lower-case column names.
type ColumnSet map[string]struct{}

// NewColumnSet builds a set from cols.
func NewColumnSet(cols ...string) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether col is in the set.
func (s ColumnSet) Contains(col string) bool {
	_, ok := s[col]
	return ok
}

// Sorted returns the members in ascending byte order.
func (s ColumnSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set with the members of s and other.
func (s ColumnSet) Union(other ColumnSet) ColumnSet {
	out := make(ColumnSet, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Minus returns a new set with the members of s not in other.
func (s ColumnSet) Minus(other ColumnSet) ColumnSet {
	out := make(ColumnSet, len(s))
	for c := range s {
		if !other.Contains(c) {
			out[c] = struct{}{}
		}
	}
	return out
}
