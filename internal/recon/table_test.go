package recon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplierSpec() TableSpec {
	return TableSpec{
		SourceName:  "Supplier",
		TargetName:  "SUPPLIER",
		JoinColumns: []string{"S_SuppKey", "s_nationkey"},
		DropColumns: []string{"s_comment"},
		ColumnMapping: []ColumnMapping{
			{SourceName: "s_suppkey", TargetName: "s_suppkey_t"},
			{SourceName: "s_nationkey", TargetName: "s_nationkey_t"},
			{SourceName: "s_address", TargetName: "s_address_t"},
			{SourceName: "s_comment", TargetName: "s_comment_t"},
		},
		Transformations: []Transformation{
			{ColumnName: "S_Address", Source: "trim(s_address)", Target: "trim(s_address_t)"},
			{ColumnName: "s_name", Source: "trim(s_name)"},
		},
		Thresholds: []Thresholds{
			{ColumnName: "S_AcctBal", LowerBound: "-5", UpperBound: "5", Type: "NUMBER"},
		},
		Filters: &Filters{Source: "s_nationkey=1"},
		JdbcReaderOptions: &JdbcReaderOptions{
			NumberPartitions: 4,
			PartitionColumn:  "S_NATIONKEY",
			LowerBound:       "0",
			UpperBound:       "100",
		},
	}
}

func TestNewTable_Normalizes(t *testing.T) {
	table := NewTable(supplierSpec())

	assert.Equal(t, "supplier", table.SourceName())
	assert.Equal(t, "supplier", table.TargetName())
	assert.Equal(t, []string{"s_suppkey", "s_nationkey"}, table.JoinColumnList())
	assert.Equal(t, "s_address", table.Transformations()[0].ColumnName)
	assert.Equal(t, "s_acctbal", table.Thresholds()[0].ColumnName)
	assert.Equal(t, "number", table.Thresholds()[0].Type)

	opts := table.JdbcReaderOptions()
	require.NotNil(t, opts)
	assert.Equal(t, "s_nationkey", opts.PartitionColumn)
	assert.Equal(t, DefaultFetchSize, opts.FetchSize)
}

func TestNewTable_UnicodeNames(t *testing.T) {
	// "É" as E + combining acute must normalize to the same name as the
	// precomposed form.
	table := NewTable(TableSpec{SourceName: "CAFE\u0301", TargetName: "caf\u00e9"})
	assert.Equal(t, table.TargetName(), table.SourceName())
	assert.Equal(t, "caf\u00e9", table.SourceName())
}

func TestNewTable_CopiesSpec(t *testing.T) {
	spec := supplierSpec()
	table := NewTable(spec)

	spec.Filters.Source = "changed"
	spec.JoinColumns[0] = "changed"
	assert.Equal(t, "s_nationkey=1", table.Filter(Source))
	assert.Equal(t, "s_suppkey", table.JoinColumnList()[0])

	cols := table.JoinColumnList()
	cols[0] = "changed"
	assert.Equal(t, "s_suppkey", table.JoinColumnList()[0])

	opts := table.JdbcReaderOptions()
	opts.PartitionColumn = "changed"
	assert.True(t, table.PartitionColumn(Source).Contains("s_nationkey"))
}

func TestTable_LayerAccessors(t *testing.T) {
	table := NewTable(supplierSpec())

	assert.Equal(t, []string{"s_nationkey", "s_suppkey"}, table.JoinColumns(Source).Sorted())
	assert.Equal(t, []string{"s_nationkey_t", "s_suppkey_t"}, table.JoinColumns(Target).Sorted())
	assert.Equal(t, []string{"s_comment_t"}, table.DropColumns(Target).Sorted())
	assert.Equal(t, []string{"s_acctbal"}, table.ThresholdColumns(Target).Sorted())
	assert.Equal(t, []string{"s_nationkey"}, table.PartitionColumn(Source).Sorted())
	assert.Empty(t, table.PartitionColumn(Target))
	assert.Equal(t, "s_nationkey=1", table.Filter(Source))
	assert.Equal(t, "", table.Filter(Target))
}

func TestTable_SelectColumnsDefaultsToSchema(t *testing.T) {
	table := NewTable(TableSpec{SourceName: "a", TargetName: "b", SelectColumns: []string{}})
	schema := []Schema{NewSchema("ID", "bigint"), {ColumnName: "Name", DataType: "string"}}

	assert.Equal(t, []string{"id", "name"}, table.SelectColumns(schema, Target).Sorted())
}

func TestTable_TransformationDict(t *testing.T) {
	table := NewTable(supplierSpec())

	src := table.TransformationDict(Source)
	want := map[string]string{"s_address": "trim(s_address)", "s_name": "trim(s_name)"}
	assert.True(t, cmp.Equal(want, src), cmp.Diff(want, src))

	tgt := table.TransformationDict(Target)
	want = map[string]string{"s_address_t": "trim(s_address_t)", "s_name": "s_name"}
	assert.True(t, cmp.Equal(want, tgt), cmp.Diff(want, tgt))
}

func TestTable_Transformation(t *testing.T) {
	table := NewTable(supplierSpec())

	expr, ok := table.Transformation("s_address_t", Target)
	assert.True(t, ok)
	assert.Equal(t, "trim(s_address_t)", expr)

	_, ok = table.Transformation("s_name", Target)
	assert.False(t, ok, "no target override falls back to normalization")

	_, ok = table.Transformation("s_phone", Source)
	assert.False(t, ok)
}

func TestTable_Validate(t *testing.T) {
	assert.NoError(t, NewTable(supplierSpec()).Validate())

	spec := supplierSpec()
	spec.Thresholds = []Thresholds{{ColumnName: "s_name", LowerBound: "0", UpperBound: "1", Type: "varchar"}}
	err := NewTable(spec).Validate()
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeUnsupportedThresholdType))
	assert.Contains(t, err.Error(), "table=supplier")
	assert.Contains(t, err.Error(), "column=s_name")

	spec.Thresholds = []Thresholds{{ColumnName: "amt", LowerBound: "abc", UpperBound: "1", Type: "int"}}
	err = NewTable(spec).Validate()
	assert.True(t, HasCode(err, ErrCodeInvalidThresholdBound))
}

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer(" Source ")
	require.NoError(t, err)
	assert.Equal(t, Source, l)

	l, err = ParseLayer("TARGET")
	require.NoError(t, err)
	assert.Equal(t, Target, l)

	_, err = ParseLayer("databricks")
	assert.True(t, HasCode(err, ErrCodeInvalidLayer))
}

func TestColumnSet(t *testing.T) {
	a := NewColumnSet("x", "y", "z")
	b := NewColumnSet("y", "w")

	assert.Equal(t, []string{"w", "x", "y", "z"}, a.Union(b).Sorted())
	assert.Equal(t, []string{"x", "z"}, a.Minus(b).Sorted())
	assert.True(t, a.Contains("x"))
	assert.False(t, a.Contains("w"))
	assert.Equal(t, []string{}, ColumnSet{}.Sorted())
}

func TestSampleKeys(t *testing.T) {
	keys := NewSampleKeys([]string{"S_NationKey", "s_suppkey"}, []any{11, 1}, []any{22, 2})
	assert.Equal(t, 2, keys.Len())
	assert.Equal(t, 0, keys.Index("s_nationkey"))
	assert.Equal(t, -1, keys.Index("missing"))
	assert.NoError(t, keys.Validate())

	assert.True(t, HasCode(NewSampleKeys([]string{"a"}).Validate(), ErrCodeNoSampleKeys))
	assert.Error(t, NewSampleKeys([]string{"a", "b"}, []any{1}).Validate())
}
