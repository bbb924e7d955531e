package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/recon/internal/compiler"
	"github.com/roach88/recon/internal/recon"
)

// LoadMode controls how errors are handled during config loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the tables loaded from a config directory.
type LoadResult struct {
	Tables    []recon.TableSpec
	FileCount int // Number of CUE files found
}

// Table returns the table whose source name matches name
// case-insensitively.
func (r *LoadResult) Table(name string) (recon.TableSpec, bool) {
	for _, t := range r.Tables {
		if strings.EqualFold(t.SourceName, name) {
			return t, true
		}
	}
	return recon.TableSpec{}, false
}

// TableNames lists the loaded source names in declaration order.
func (r *LoadResult) TableNames() []string {
	names := make([]string, len(r.Tables))
	for i, t := range r.Tables {
		names[i] = t.SourceName
	}
	return names
}

// LoadError represents an error that occurred during config loading.
type LoadError struct {
	Code    string
	Message string
	Table   string    // table label, when the error belongs to one table
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Table != "" {
		msg = fmt.Sprintf("table %s: %s", e.Table, msg)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// LoadTables loads, compiles and validates the CUE table configs in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
//
// A nil result means the directory itself could not be loaded.
func LoadTables(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}

	tablesVal := value.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoTables, Message: "no tables found in config"}}
	}
	iter, err := tablesVal.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating tables: %v", err)}}
	}

	seen := make(map[string]string)
	for iter.Next() {
		label := iter.Label()
		spec, compileErr := compiler.CompileTable(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, label))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		var tableErrs []error
		key := strings.ToLower(spec.SourceName)
		if other, dup := seen[key]; dup {
			tableErrs = append(tableErrs, &LoadError{
				Code:    ErrCodeDuplicateTable,
				Message: fmt.Sprintf("source name %q is also used by table %s", spec.SourceName, other),
				Table:   label,
				Pos:     iter.Value().Pos(),
			})
		}
		seen[key] = label

		for _, ve := range compiler.Validate(*spec) {
			tableErrs = append(tableErrs, &LoadError{
				Code:    ve.Code,
				Message: fmt.Sprintf("%s: %s", ve.Field, ve.Message),
				Table:   label,
				Pos:     iter.Value().Pos(),
			})
		}
		if len(tableErrs) > 0 {
			errs = append(errs, tableErrs...)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Tables = append(result.Tables, *spec)
	}

	if len(result.Tables) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoTables, Message: "no tables found in config"})
	}
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, table string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapCompileErrorCode(compileErr),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Table:   table,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
		Table:   table,
	}
}

// Error code constants - unified across all CLI commands. Table
// validation codes (E1xx) come from the compiler package.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Directory scan error
	ErrCodeNoFiles        = "E003" // No CUE files found
	ErrCodeLoadFailed     = "E004" // CUE load failed
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeBuildFailed    = "E006" // CUE build failed
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeNoTables       = "E008" // Config declares no tables
	ErrCodeDuplicateTable = "E009" // Two tables share a source name
	ErrCodeInputFailed    = "E010" // Schema or sample key file unreadable
	ErrCodeUnknownTable   = "E011" // --table names no loaded table
	ErrCodeInvalidFlag    = "E012" // Bad --kind or --layer value
	ErrCodeQueryFailed    = "E013" // Query synthesis failed
	ErrCodeStoreFailed    = "E014" // Query log failure
	ErrCodeScenarioFailed = "E015" // One or more scenarios failed

	// Table compile errors
	ErrCodeUnknownField = "E020" // Field not part of the table schema
	ErrCodeMissingField = "E021" // Required field absent
	ErrCodeInvalidValue = "E022" // Field has the wrong kind of value
)

// MapCompileErrorCode maps a compiler error to an error code.
func MapCompileErrorCode(err *compiler.CompileError) string {
	switch {
	case err.Message == "unknown field":
		return ErrCodeUnknownField
	case strings.HasSuffix(err.Message, " is required"):
		return ErrCodeMissingField
	case err.Field == "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeInvalidValue
	}
}
