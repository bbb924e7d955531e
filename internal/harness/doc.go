// Package harness runs reconciliation query scenarios.
//
// A scenario names a CUE config directory, one table, the layer schemas
// and sample keys, and a list of queries to render with their
// expectations. Each run records the rendered queries in a fresh in-memory
// query log.
//
// # Scenario Format
//
//	name: supplier_hash
//	description: "Hash query hides thresholded and dropped columns"
//	config: ../configs/tpch
//	table: supplier
//	schema:
//	  source:
//	    - {column_name: s_suppkey, data_type: number}
//	keys:
//	  columns: [s_suppkey]
//	  rows: [[1], [2]]
//	queries:
//	  - kind: hash
//	    layer: source
//	    dialect: databricks
//	    expect:
//	      contains: ["AS hash_value_recon"]
//	      not_contains: ["s_acctbal"]
//	  - kind: hash
//	    dialect: teradata
//	    expect:
//	      error: UNSUPPORTED_DIALECT
//
// The config path is relative to the scenario file. Layer defaults to
// source and dialect to databricks.
//
// # Golden Files
//
// RunWithGolden compares the rendered queries against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
