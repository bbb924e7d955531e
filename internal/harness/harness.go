package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/recon/internal/compiler"
	"github.com/roach88/recon/internal/log"
	"github.com/roach88/recon/internal/querybuilder"
	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/sqlrender"
	"github.com/roach88/recon/internal/store"
)

// DefaultRunID names the run of scenarios that do not set run_id.
const DefaultRunID = "scenario-run"

// Harness renders a scenario's queries against one compiled table.
type Harness struct {
	store  *store.Store
	table  *recon.Table
	schema map[recon.Layer][]recon.Schema
	keys   recon.SampleKeys
	runID  string
	logger log.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory query log. A config that
// does not compile or validate is an error, not a failed result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	table, err := loadTable(scenario.Config, scenario.Table)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		table:  table,
		schema: make(map[recon.Layer][]recon.Schema),
		keys:   scenario.sampleKeys(),
		runID:  scenario.RunID,
		logger: &log.NoopLogger{},
	}
	if h.runID == "" {
		h.runID = DefaultRunID
	}
	for name, cols := range scenario.Schema {
		// validated by LoadScenario
		layer, _ := recon.ParseLayer(name)
		h.schema[layer] = cols
	}

	run := store.Run{ID: h.runID, ConfigDir: scenario.Config, Tables: []string{table.SourceName()}}
	if err := st.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Queries {
		res, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		result.Steps = append(result.Steps, res)
		for _, failure := range EvaluateStep(i, step, res) {
			result.AddError(failure.Error())
		}
	}
	return result, nil
}

// execute renders one step. Configuration errors become part of the step
// result; store failures abort the run.
func (h *Harness) execute(ctx context.Context, step QueryStep) (StepResult, error) {
	kind, err := querybuilder.ParseKind(step.Kind)
	if err != nil {
		return StepResult{}, err
	}
	layer := recon.Source
	if step.Layer != "" {
		if layer, err = recon.ParseLayer(step.Layer); err != nil {
			return StepResult{}, err
		}
	}
	dialect := step.Dialect
	if dialect == "" {
		dialect = sqlrender.Databricks
	}

	res := StepResult{Kind: string(kind), Layer: layer.String(), Dialect: dialect}
	if kind == querybuilder.KindThreshold {
		// threshold queries compare both layers in databricks
		res.Dialect = sqlrender.Databricks
	}
	sql, err := h.build(kind, layer, dialect)
	if err != nil {
		res.Err = err.Error()
		var ce *recon.ConfigError
		if errors.As(err, &ce) {
			res.ErrorCode = string(ce.Code)
		}
		return res, nil
	}
	res.SQL = sql

	rec, _, err := h.store.RecordQuery(ctx, store.CompiledQuery{
		RunID:   h.runID,
		Table:   h.table.SourceName(),
		Kind:    res.Kind,
		Layer:   res.Layer,
		Dialect: res.Dialect,
		SQL:     sql,
	})
	if err != nil {
		return StepResult{}, fmt.Errorf("failed to record query: %w", err)
	}
	res.QueryID, res.Seq = rec.ID, rec.Seq
	return res, nil
}

func (h *Harness) build(kind querybuilder.Kind, layer recon.Layer, dialect string) (string, error) {
	b, err := querybuilder.New(h.table, h.schema[layer], layer, dialect, querybuilder.WithLogger(h.logger))
	if err != nil {
		return "", err
	}
	return b.Build(kind, h.keys)
}

// loadTable compiles the CUE config in dir and returns the validated table
// whose source name matches name.
func loadTable(dir, name string) (*recon.Table, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", err)
	}
	value := cuecontext.New().BuildInstance(instances[0])

	specs, err := compiler.CompileTables(value)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if !strings.EqualFold(spec.SourceName, name) {
			continue
		}
		if verrs := compiler.Validate(spec); len(verrs) > 0 {
			errs := make([]error, len(verrs))
			for i, ve := range verrs {
				errs[i] = ve
			}
			return nil, fmt.Errorf("table %s: %w", spec.SourceName, errors.Join(errs...))
		}
		return recon.NewTable(spec), nil
	}
	return nil, fmt.Errorf("no table %q in %s", name, dir)
}
