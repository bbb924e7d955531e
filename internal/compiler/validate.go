package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/recon"
)

// Validation error codes (E100-E199)
const (
	ErrTargetNameEmpty         = "E101" // target name resolves to empty
	ErrDuplicateMapping        = "E102" // column mapped twice on either side
	ErrUnsupportedThreshold    = "E103" // threshold type neither numeric nor temporal
	ErrInvalidBounds           = "E104" // unparsable or inverted bounds
	ErrEmptyTransformation     = "E105" // transformation overrides neither layer
	ErrJoinColumnDropped       = "E106" // join column also listed in drop_columns
	ErrPartitionWithoutCount   = "E107" // partition column without number_partitions
	ErrDuplicateThreshold      = "E108" // two thresholds on one column
	ErrDuplicateTransformation = "E109" // two transformations on one column
)

// ValidationError represents a table validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled table against the rules query synthesis
// relies on. Returns all errors found (does not fail-fast). Names compare
// case-insensitively, the way the query builders see them.
func Validate(spec recon.TableSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.TargetName) == "" {
		errs = append(errs, ValidationError{
			Field:   "target_name",
			Message: "target name must be non-empty",
			Code:    ErrTargetNameEmpty,
		})
	}

	errs = append(errs, validateMappings(spec.ColumnMapping)...)
	errs = append(errs, validateTransformations(spec.Transformations)...)
	errs = append(errs, validateThresholds(spec.Thresholds)...)

	dropped := nameSet(spec.DropColumns)
	for i, c := range spec.JoinColumns {
		if dropped[fold(c)] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("join_columns[%d]", i),
				Message: fmt.Sprintf("join column %q is also dropped", c),
				Code:    ErrJoinColumnDropped,
			})
		}
	}

	if o := spec.JdbcReaderOptions; o != nil && o.PartitionColumn != "" && o.NumberPartitions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "jdbc_reader_options.number_partitions",
			Message: fmt.Sprintf("partition column %q requires a positive number_partitions", o.PartitionColumn),
			Code:    ErrPartitionWithoutCount,
		})
	}

	return errs
}

func validateMappings(mappings []recon.ColumnMapping) []ValidationError {
	var errs []ValidationError
	sources := make(map[string]bool)
	targets := make(map[string]bool)

	for i, m := range mappings {
		field := fmt.Sprintf("column_mapping[%d]", i)
		src, tgt := fold(m.SourceName), fold(m.TargetName)
		if sources[src] {
			errs = append(errs, ValidationError{
				Field:   field + ".source_name",
				Message: fmt.Sprintf("source column %q is mapped more than once", m.SourceName),
				Code:    ErrDuplicateMapping,
			})
		}
		if targets[tgt] {
			errs = append(errs, ValidationError{
				Field:   field + ".target_name",
				Message: fmt.Sprintf("target column %q is mapped more than once", m.TargetName),
				Code:    ErrDuplicateMapping,
			})
		}
		sources[src] = true
		targets[tgt] = true
	}
	return errs
}

func validateTransformations(trs []recon.Transformation) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, tr := range trs {
		field := fmt.Sprintf("transformations[%d]", i)
		if strings.TrimSpace(tr.Source) == "" && strings.TrimSpace(tr.Target) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("transformation for %q sets neither source nor target", tr.ColumnName),
				Code:    ErrEmptyTransformation,
			})
		}
		name := fold(tr.ColumnName)
		if seen[name] {
			errs = append(errs, ValidationError{
				Field:   field + ".column_name",
				Message: fmt.Sprintf("column %q is transformed more than once", tr.ColumnName),
				Code:    ErrDuplicateTransformation,
			})
		}
		seen[name] = true
	}
	return errs
}

func validateThresholds(ths []recon.Thresholds) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, th := range ths {
		field := fmt.Sprintf("thresholds[%d]", i)
		th.Type = fold(th.Type)
		if _, err := th.Mode(); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unsupported threshold type %q", th.Type),
				Code:    ErrUnsupportedThreshold,
			})
		}
		if lower, upper, err := th.Bounds(); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: err.Error(),
				Code:    ErrInvalidBounds,
			})
		} else if lower.GreaterThan(upper) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("lower bound %s exceeds upper bound %s", lower, upper),
				Code:    ErrInvalidBounds,
			})
		}
		name := fold(th.ColumnName)
		if seen[name] {
			errs = append(errs, ValidationError{
				Field:   field + ".column_name",
				Message: fmt.Sprintf("column %q has more than one threshold", th.ColumnName),
				Code:    ErrDuplicateThreshold,
			})
		}
		seen[name] = true
	}
	return errs
}

// fold matches names the way recon.NewTable normalizes them.
func fold(s string) string {
	return recon.NewSchema(s, "").ColumnName
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[fold(n)] = true
	}
	return set
}
