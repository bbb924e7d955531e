package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/shopspring/decimal"

	"github.com/roach88/recon/internal/recon"
)

// tableFields are the fields a table struct may declare.
var tableFields = map[string]bool{
	"source_name":         true,
	"target_name":         true,
	"join_columns":        true,
	"select_columns":      true,
	"drop_columns":        true,
	"column_mapping":      true,
	"transformations":     true,
	"thresholds":          true,
	"filters":             true,
	"jdbc_reader_options": true,
}

// CompileTables compiles every table under the top-level "table" struct of
// v, in declaration order. A value without tables yields an empty slice.
func CompileTables(v cue.Value) ([]recon.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, nil
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []recon.TableSpec
	for iter.Next() {
		spec, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileTable parses a CUE value into a TableSpec.
//
// The value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: supplier: { target_name: "supplier_t", ... }`)
//	spec, err := CompileTable(v.LookupPath(cue.ParsePath("table.supplier")))
//
// The source name defaults to the struct label and the target name to the
// source name.
func CompileTable(v cue.Value) (*recon.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "table",
			Message: fmt.Sprintf("table must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	if err := checkFields(v, "table", tableFields); err != nil {
		return nil, err
	}

	spec := &recon.TableSpec{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		// quoted labels such as "order-lines" keep their quotes in String()
		spec.SourceName = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	if spec.SourceName, err = optionalString(v, "source_name", spec.SourceName); err != nil {
		return nil, err
	}
	if spec.SourceName == "" {
		return nil, &CompileError{Field: "source_name", Message: "source name is required", Pos: v.Pos()}
	}
	if spec.TargetName, err = optionalString(v, "target_name", spec.SourceName); err != nil {
		return nil, err
	}

	if spec.JoinColumns, err = stringList(v, "join_columns"); err != nil {
		return nil, err
	}
	if spec.SelectColumns, err = stringList(v, "select_columns"); err != nil {
		return nil, err
	}
	if spec.DropColumns, err = stringList(v, "drop_columns"); err != nil {
		return nil, err
	}
	if spec.ColumnMapping, err = parseColumnMapping(v); err != nil {
		return nil, err
	}
	if spec.Transformations, err = parseTransformations(v); err != nil {
		return nil, err
	}
	if spec.Thresholds, err = parseThresholds(v); err != nil {
		return nil, err
	}
	if spec.Filters, err = parseFilters(v); err != nil {
		return nil, err
	}
	if spec.JdbcReaderOptions, err = parseJdbcOptions(v); err != nil {
		return nil, err
	}
	return spec, nil
}

// parseColumnMapping reads column_mapping: [{source_name, target_name}].
func parseColumnMapping(v cue.Value) ([]recon.ColumnMapping, error) {
	var out []recon.ColumnMapping
	err := eachStruct(v, "column_mapping", func(field string, item cue.Value) error {
		src, err := requiredString(item, field, "source_name")
		if err != nil {
			return err
		}
		tgt, err := requiredString(item, field, "target_name")
		if err != nil {
			return err
		}
		out = append(out, recon.ColumnMapping{SourceName: src, TargetName: tgt})
		return nil
	})
	return out, err
}

// parseTransformations reads transformations: [{column_name, source?, target?}].
func parseTransformations(v cue.Value) ([]recon.Transformation, error) {
	var out []recon.Transformation
	err := eachStruct(v, "transformations", func(field string, item cue.Value) error {
		var (
			tr  recon.Transformation
			err error
		)
		if tr.ColumnName, err = requiredString(item, field, "column_name"); err != nil {
			return err
		}
		if tr.Source, err = optionalString(item, "source", ""); err != nil {
			return err
		}
		if tr.Target, err = optionalString(item, "target", ""); err != nil {
			return err
		}
		out = append(out, tr)
		return nil
	})
	return out, err
}

// parseThresholds reads thresholds: [{column_name, lower_bound, upper_bound, type}].
// Bounds may be strings ("-5%") or numbers.
func parseThresholds(v cue.Value) ([]recon.Thresholds, error) {
	var out []recon.Thresholds
	err := eachStruct(v, "thresholds", func(field string, item cue.Value) error {
		var (
			th  recon.Thresholds
			err error
		)
		if th.ColumnName, err = requiredString(item, field, "column_name"); err != nil {
			return err
		}
		if th.Type, err = requiredString(item, field, "type"); err != nil {
			return err
		}
		if th.LowerBound, err = bound(item, field, "lower_bound"); err != nil {
			return err
		}
		if th.UpperBound, err = bound(item, field, "upper_bound"); err != nil {
			return err
		}
		out = append(out, th)
		return nil
	})
	return out, err
}

func parseFilters(v cue.Value) (*recon.Filters, error) {
	fv := v.LookupPath(cue.ParsePath("filters"))
	if !fv.Exists() {
		return nil, nil
	}
	if err := checkFields(fv, "filters", map[string]bool{"source": true, "target": true}); err != nil {
		return nil, err
	}
	var (
		f   recon.Filters
		err error
	)
	if f.Source, err = optionalString(fv, "source", ""); err != nil {
		return nil, err
	}
	if f.Target, err = optionalString(fv, "target", ""); err != nil {
		return nil, err
	}
	return &f, nil
}

func parseJdbcOptions(v cue.Value) (*recon.JdbcReaderOptions, error) {
	ov := v.LookupPath(cue.ParsePath("jdbc_reader_options"))
	if !ov.Exists() {
		return nil, nil
	}
	if err := checkFields(ov, "jdbc_reader_options", map[string]bool{
		"number_partitions": true, "partition_column": true,
		"lower_bound": true, "upper_bound": true, "fetch_size": true,
	}); err != nil {
		return nil, err
	}

	var (
		o   recon.JdbcReaderOptions
		err error
	)
	if o.NumberPartitions, err = optionalInt(ov, "number_partitions"); err != nil {
		return nil, err
	}
	if o.FetchSize, err = optionalInt(ov, "fetch_size"); err != nil {
		return nil, err
	}
	if o.PartitionColumn, err = optionalString(ov, "partition_column", ""); err != nil {
		return nil, err
	}
	if ov.LookupPath(cue.ParsePath("lower_bound")).Exists() {
		if o.LowerBound, err = bound(ov, "jdbc_reader_options", "lower_bound"); err != nil {
			return nil, err
		}
	}
	if ov.LookupPath(cue.ParsePath("upper_bound")).Exists() {
		if o.UpperBound, err = bound(ov, "jdbc_reader_options", "upper_bound"); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// checkFields rejects labels outside allowed so that typos do not pass
// silently.
func checkFields(v cue.Value, field string, allowed map[string]bool) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if !allowed[iter.Label()] {
			return &CompileError{
				Field:   fmt.Sprintf("%s.%s", field, iter.Label()),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// eachStruct calls fn for every element of the list at name. Elements must
// be structs.
func eachStruct(v cue.Value, name string, fn func(field string, item cue.Value) error) error {
	lv := v.LookupPath(cue.ParsePath(name))
	if !lv.Exists() {
		return nil
	}
	iter, err := lv.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		field := fmt.Sprintf("%s[%d]", name, i)
		if item.IncompleteKind() != cue.StructKind {
			return &CompileError{Field: field, Message: "must be a struct", Pos: item.Pos()}
		}
		if err := fn(field, item); err != nil {
			return err
		}
	}
	return nil
}

func stringList(v cue.Value, name string) ([]string, error) {
	lv := v.LookupPath(cue.ParsePath(name))
	if !lv.Exists() {
		return nil, nil
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func requiredString(v cue.Value, field, name string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return "", &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, name, def string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return def, nil
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalInt(v cue.Value, name string) (int, error) {
	iv := v.LookupPath(cue.ParsePath(name))
	if !iv.Exists() {
		return 0, nil
	}
	n, err := iv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// bound reads a threshold or partition bound as text. Numbers are rendered
// exactly; strings are kept as written so that "%" survives.
func bound(v cue.Value, field, name string) (string, error) {
	bv := v.LookupPath(cue.ParsePath(name))
	if !bv.Exists() {
		return "", &CompileError{Field: field + "." + name, Message: name + " is required", Pos: v.Pos()}
	}
	switch bv.IncompleteKind() {
	case cue.StringKind:
		s, err := bv.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := bv.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := bv.Float64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return decimal.NewFromFloat(f).String(), nil
	default:
		return "", &CompileError{
			Field:   field + "." + name,
			Message: fmt.Sprintf("bound must be a string or number, got %v", bv.IncompleteKind()),
			Pos:     bv.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
