package recon

// Resolver translates column names between the source and target
// vocabularies. Names without a mapping translate to themselves.
//
// All operations are total; a Resolver never returns an error.
type Resolver struct {
	toTarget map[string]string
	toSource map[string]string
}

// NewResolver derives both translation maps from mappings. Duplicate names
// are not detected; the last mapping for a name wins.
func NewResolver(mappings []ColumnMapping) Resolver {
	r := Resolver{
		toTarget: make(map[string]string, len(mappings)),
		toSource: make(map[string]string, len(mappings)),
	}
	for _, m := range mappings {
		src, tgt := normalizeName(m.SourceName), normalizeName(m.TargetName)
		r.toTarget[src] = tgt
		r.toSource[tgt] = src
	}
	return r
}

// ResolveOne returns col in layer's vocabulary. col is a source-side name.
func (r Resolver) ResolveOne(col string, layer Layer) string {
	if layer.IsSource() {
		return col
	}
	if tgt, ok := r.toTarget[col]; ok {
		return tgt
	}
	return col
}

// Resolve maps source-side cols into layer's vocabulary.
func (r Resolver) Resolve(cols []string, layer Layer) ColumnSet {
	out := make(ColumnSet, len(cols))
	for _, c := range cols {
		out[r.ResolveOne(c, layer)] = struct{}{}
	}
	return out
}

// ReverseOne returns the source-side name of col, a name in layer's
// vocabulary. It is the identity on the source layer.
func (r Resolver) ReverseOne(col string, layer Layer) string {
	if layer.IsSource() {
		return col
	}
	if src, ok := r.toSource[col]; ok {
		return src
	}
	return col
}

// Reverse maps target-side cols back to source-side names.
func (r Resolver) Reverse(cols []string) ColumnSet {
	out := make(ColumnSet, len(cols))
	for _, c := range cols {
		out[r.ReverseOne(c, Target)] = struct{}{}
	}
	return out
}
