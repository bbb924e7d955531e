package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recon/internal/recon"
)

// schemaFile is the YAML layout of a --schema file:
//
//	columns:
//	  - column_name: s_suppkey
//	    data_type: number
type schemaFile struct {
	Columns []recon.Schema `yaml:"columns"`
}

// keysFile is the YAML layout of a --keys file. Row values keep their YAML
// types: integers, floats, strings, booleans, null and timestamps.
//
//	columns: [s_suppkey, s_nationkey]
//	rows:
//	  - [1, 11]
//	  - [2, 22]
type keysFile struct {
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// LoadSchema reads a layer schema from a YAML file. Column names are
// normalized.
func LoadSchema(path string) ([]recon.Schema, error) {
	var f schemaFile
	if err := decodeYAML(path, &f); err != nil {
		return nil, err
	}
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("schema %s: no columns", path)
	}
	out := make([]recon.Schema, len(f.Columns))
	for i, c := range f.Columns {
		if c.ColumnName == "" {
			return nil, fmt.Errorf("schema %s: column %d has no column_name", path, i)
		}
		out[i] = recon.NewSchema(c.ColumnName, c.DataType)
	}
	return out, nil
}

// LoadSampleKeys reads sample keys from a YAML file. Every row must have one
// value per column.
func LoadSampleKeys(path string) (recon.SampleKeys, error) {
	var f keysFile
	if err := decodeYAML(path, &f); err != nil {
		return recon.SampleKeys{}, err
	}
	if len(f.Columns) == 0 {
		return recon.SampleKeys{}, fmt.Errorf("keys %s: no columns", path)
	}
	for i, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return recon.SampleKeys{}, fmt.Errorf("keys %s: row %d has %d values, want %d", path, i, len(row), len(f.Columns))
		}
	}
	return recon.NewSampleKeys(f.Columns, f.Rows...), nil
}

func decodeYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
