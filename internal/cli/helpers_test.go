package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const supplierConfig = `
package recon

table: supplier: {
	join_columns: ["s_suppkey", "s_nationkey"]
	drop_columns: ["s_comment"]
	column_mapping: [{source_name: "s_address", target_name: "s_address_t"}]
	transformations: [{column_name: "s_name", source: "trim(s_name)", target: "trim(s_name)"}]
	thresholds: [{column_name: "s_acctbal", lower_bound: -5, upper_bound: 5, type: "number"}]
	filters: source: "s_nationkey=1"
}

table: nation: {
	target_name: "nation_t"
	join_columns: ["n_nationkey"]
}
`

const sourceSchemaYAML = `
columns:
  - column_name: S_SUPPKEY
    data_type: number
  - column_name: s_name
    data_type: varchar(25)
  - column_name: s_address
    data_type: NCHAR(40)
  - column_name: s_nationkey
    data_type: number
  - column_name: s_acctbal
    data_type: number(15,2)
  - column_name: s_comment
    data_type: varchar(101)
`

const keysYAML = `
columns: [s_suppkey, s_nationkey]
rows:
  - [1, 11]
  - [2, 22]
`

// writeFiles writes name → content into a fresh temp dir and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// supplierFixture lays out a config dir plus schema and key inputs.
func supplierFixture(t *testing.T) (configDir, schemaPath, keysPath string) {
	t.Helper()
	root := writeFiles(t, map[string]string{
		"config/tables.cue":  supplierConfig,
		"inputs/source.yaml": sourceSchemaYAML,
		"inputs/keys.yaml":   keysYAML,
	})
	return filepath.Join(root, "config"),
		filepath.Join(root, "inputs", "source.yaml"),
		filepath.Join(root, "inputs", "keys.yaml")
}
