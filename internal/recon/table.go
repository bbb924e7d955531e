package recon

// SourceName returns the lower-cased source table name.
func (t *Table) SourceName() string { return t.sourceName }

// TargetName returns the lower-cased target table name.
func (t *Table) TargetName() string { return t.targetName }

// Resolver returns the column-name resolver derived from the mappings.
func (t *Table) Resolver() Resolver { return t.resolver }

// JoinColumnList returns the join columns in configuration order, in the
// source vocabulary.
func (t *Table) JoinColumnList() []string { return cloneStrings(t.joinColumns) }

// ColumnMappings returns a copy of the column mappings.
func (t *Table) ColumnMappings() []ColumnMapping {
	return append([]ColumnMapping(nil), t.columnMapping...)
}

// Transformations returns a copy of the transformations.
func (t *Table) Transformations() []Transformation {
	return append([]Transformation(nil), t.transformations...)
}

// Thresholds returns a copy of the thresholds in configuration order.
func (t *Table) Thresholds() []Thresholds {
	return append([]Thresholds(nil), t.thresholds...)
}

// JdbcReaderOptions returns a copy of the reader options, or nil.
func (t *Table) JdbcReaderOptions() *JdbcReaderOptions {
	if t.jdbcOptions == nil {
		return nil
	}
	o := *t.jdbcOptions
	return &o
}

// SelectColumns returns the columns to compare in layer's vocabulary. With
// no select list configured, every column of schema is selected; schema is
// then expected to be the layer's own schema.
func (t *Table) SelectColumns(schema []Schema, layer Layer) ColumnSet {
	if t.selectColumns == nil {
		out := make(ColumnSet, len(schema))
		for _, s := range schema {
			out[normalizeName(s.ColumnName)] = struct{}{}
		}
		return out
	}
	return t.resolver.Resolve(t.selectColumns, layer)
}

// ThresholdColumns returns the thresholded columns in layer's vocabulary.
func (t *Table) ThresholdColumns(layer Layer) ColumnSet {
	cols := make([]string, len(t.thresholds))
	for i, th := range t.thresholds {
		cols[i] = th.ColumnName
	}
	return t.resolver.Resolve(cols, layer)
}

// JoinColumns returns the join columns in layer's vocabulary.
func (t *Table) JoinColumns(layer Layer) ColumnSet {
	return t.resolver.Resolve(t.joinColumns, layer)
}

// DropColumns returns the excluded columns in layer's vocabulary.
func (t *Table) DropColumns(layer Layer) ColumnSet {
	return t.resolver.Resolve(t.dropColumns, layer)
}

// TransformationDict maps each transformed column, in layer's vocabulary,
// to its layer expression. Columns with no expression for the layer map to
// their own name.
func (t *Table) TransformationDict(layer Layer) map[string]string {
	out := make(map[string]string, len(t.transformations))
	for _, tr := range t.transformations {
		col := t.resolver.ResolveOne(tr.ColumnName, layer)
		expr := tr.Target
		if layer.IsSource() {
			expr = tr.Source
		}
		if expr == "" {
			expr = col
		}
		out[col] = expr
	}
	return out
}

// Transformation returns the layer expression overriding col, a name in
// layer's vocabulary. ok is false when the column has no override for the
// layer and must go through normal normalization.
func (t *Table) Transformation(col string, layer Layer) (expr string, ok bool) {
	for _, tr := range t.transformations {
		if t.resolver.ResolveOne(tr.ColumnName, layer) != col {
			continue
		}
		if layer.IsSource() {
			expr = tr.Source
		} else {
			expr = tr.Target
		}
		return expr, expr != ""
	}
	return "", false
}

// PartitionColumn returns the JDBC partition column. Partitioned reads only
// apply to the source layer.
func (t *Table) PartitionColumn(layer Layer) ColumnSet {
	if t.jdbcOptions == nil || !layer.IsSource() || t.jdbcOptions.PartitionColumn == "" {
		return ColumnSet{}
	}
	return NewColumnSet(t.jdbcOptions.PartitionColumn)
}

// Filter returns layer's raw predicate, or "" when there is none.
func (t *Table) Filter(layer Layer) string {
	if t.filters == nil {
		return ""
	}
	if layer.IsSource() {
		return t.filters.Source
	}
	return t.filters.Target
}

// Validate checks every threshold for a supported type and well-formed
// bounds. Query builders perform the same checks lazily; Validate lets a
// loader report them up front.
func (t *Table) Validate() error {
	for _, th := range t.thresholds {
		if _, err := th.Mode(); err != nil {
			return withTable(err, t.sourceName)
		}
		if _, _, err := th.Bounds(); err != nil {
			return withTable(err, t.sourceName)
		}
	}
	return nil
}

func withTable(err error, table string) error {
	if ce, ok := err.(*ConfigError); ok && ce.Table == "" {
		c := *ce
		c.Table = table
		return &c
	}
	return err
}
