// Package recon holds the reconciliation configuration model and the
// column-name resolver.
//
// A Table pairs a source table with its target counterpart. Column names
// are always lower-cased on the way in. Lists that name columns (join,
// select, drop, thresholds, transformations) use the source vocabulary;
// the layer-aware accessors translate them into the target vocabulary
// through the column mappings, passing unmapped names through unchanged.
//
// Configuration problems surface as *ConfigError values with a code.
package recon
