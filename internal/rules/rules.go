// Package rules holds the per-dialect normalization and hashing tables.
//
// The normalization table is keyed by dialect and then by logical type.
// When a (dialect, type) pair has an entry it replaces the default chain
// entirely; otherwise the default chain applies. Chains run left to right,
// so a column-level transform after the first wraps the column inside
// the earlier wrappers.
//
// Both tables are built at package initialization and never modified.
package rules

import (
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/sqlexpr"
	"github.com/roach88/recon/internal/transform"
)

// NullPlaceholder replaces NULL and blank NCHAR/NVARCHAR values on Oracle.
const NullPlaceholder = "_null_recon_"

const oracleNCharTemplate = "NVL(TRIM(TO_CHAR({})),'" + NullPlaceholder + "')"

var defaultChain = []transform.Func{
	transform.Coalesce("", true),
	transform.Trim(),
}

var normalization = map[string]map[string][]transform.Func{
	"snowflake": {
		"array": {transform.ArrayToString(",", ""), transform.ArraySort(true)},
	},
	"oracle": {
		"nchar":    {transform.Anonymous(oracleNCharTemplate)},
		"nvarchar": {transform.Anonymous(oracleNCharTemplate)},
	},
	"databricks": {
		"array": {transform.Anonymous("CONCAT_WS(',', SORT_ARRAY({}))")},
	},
}

var hashing = map[string][]transform.Func{
	"snowflake":  {transform.WrapSHA2("256")},
	"databricks": {transform.WrapSHA2("256")},
	"oracle":     {transform.WrapAnonymous("RAWTOHEX(STANDARD_HASH({}, 'SHA256'))")},
}

// DefaultChain returns the dialect-independent normalization chain:
// COALESCE(TRIM(col), '').
func DefaultChain() []transform.Func {
	return append([]transform.Func(nil), defaultChain...)
}

// Normalization returns the chain for a column of dataType in dialect.
// Unknown dialects and types get the default chain.
func Normalization(dialect, dataType string) []transform.Func {
	if byType, ok := normalization[strings.ToLower(dialect)]; ok {
		if chain, ok := byType[TypeKey(dataType)]; ok {
			return append([]transform.Func(nil), chain...)
		}
	}
	return DefaultChain()
}

// Normalize applies the chain for (dialect, dataType) to e.
func Normalize(e sqlexpr.Expr, dialect, dataType string) sqlexpr.Expr {
	return transform.Expression(e, Normalization(dialect, dataType)...)
}

// NormalizeDefault applies the default chain to e.
func NormalizeDefault(e sqlexpr.Expr) sqlexpr.Expr {
	return transform.Expression(e, defaultChain...)
}

// Hash returns the whole-row hash chain registered for dialect.
func Hash(dialect string) ([]transform.Func, error) {
	chain, ok := hashing[strings.ToLower(dialect)]
	if !ok {
		err := recon.NewUnsupportedDialectError(dialect)
		err.Message = fmt.Sprintf("no hash algorithm registered for dialect %q", dialect)
		return nil, err
	}
	return append([]transform.Func(nil), chain...), nil
}

// TypeKey reduces a declared type to its table key: lower-cased, without
// a parameter list or element type. "NVARCHAR2(20)" stays distinct from
// "nvarchar", while "ARRAY<STRING>" becomes "array".
func TypeKey(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if i := strings.IndexAny(t, "(<"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
