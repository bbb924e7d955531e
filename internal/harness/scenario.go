package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recon/internal/querybuilder"
	"github.com/roach88/recon/internal/recon"
)

// Scenario defines one table's query expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the CUE config directory. LoadScenario resolves it
	// against the scenario file's directory.
	Config string `yaml:"config"`

	// Table is the source name of the table under test.
	Table string `yaml:"table"`

	// Schema holds the table's columns per layer ("source", "target").
	Schema map[string][]recon.Schema `yaml:"schema,omitempty"`

	// Keys are the sample keys for sampling queries.
	Keys *KeySet `yaml:"keys,omitempty"`

	// Queries are rendered in order.
	Queries []QueryStep `yaml:"queries"`

	// RunID names the run in the query log. Defaults to DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`
}

// KeySet is the YAML form of recon.SampleKeys.
type KeySet struct {
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// QueryStep renders one query.
type QueryStep struct {
	Kind    string        `yaml:"kind"`
	Layer   string        `yaml:"layer,omitempty"`
	Dialect string        `yaml:"dialect,omitempty"`
	Expect  *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step. Error excludes
// the SQL checks.
type ExpectClause struct {
	Contains    []string `yaml:"contains,omitempty"`
	NotContains []string `yaml:"not_contains,omitempty"`
	Equals      string   `yaml:"equals,omitempty"`

	// Error is the expected recon.ConfigErrorCode.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "query:" vs "queries:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if info, err := os.Stat(s.Config); err != nil || !info.IsDir() {
		return fmt.Errorf("config directory not found: %s", s.Config)
	}
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for layer := range s.Schema {
		if _, err := recon.ParseLayer(layer); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	if s.Keys != nil {
		for i, row := range s.Keys.Rows {
			if len(row) != len(s.Keys.Columns) {
				return fmt.Errorf("keys.rows[%d]: %d values for %d columns", i, len(row), len(s.Keys.Columns))
			}
		}
	}

	for i, q := range s.Queries {
		if _, err := querybuilder.ParseKind(q.Kind); err != nil {
			return fmt.Errorf("queries[%d]: %w", i, err)
		}
		if q.Layer != "" {
			if _, err := recon.ParseLayer(q.Layer); err != nil {
				return fmt.Errorf("queries[%d]: %w", i, err)
			}
		}
		if e := q.Expect; e != nil && e.Error != "" &&
			(len(e.Contains) > 0 || len(e.NotContains) > 0 || e.Equals != "") {
			return fmt.Errorf("queries[%d].expect: error excludes contains, not_contains and equals", i)
		}
	}
	return nil
}

// sampleKeys converts the scenario keys, if any.
func (s *Scenario) sampleKeys() recon.SampleKeys {
	if s.Keys == nil {
		return recon.SampleKeys{}
	}
	return recon.NewSampleKeys(s.Keys.Columns, s.Keys.Rows...)
}
