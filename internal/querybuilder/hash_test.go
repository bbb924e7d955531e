package querybuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/recon"
	"github.com/roach88/recon/internal/sqlrender"
)

func TestBuildHashQuery_Golden(t *testing.T) {
	tests := []struct {
		name    string
		layer   recon.Layer
		dialect string
	}{
		{"hash_databricks_source", recon.Source, sqlrender.Databricks},
		{"hash_snowflake_target", recon.Target, sqlrender.Snowflake},
		{"hash_oracle_source", recon.Source, sqlrender.Oracle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, supplierTable(), tt.layer, tt.dialect)
			sql, err := b.BuildHashQuery()
			require.NoError(t, err)
			assertGolden(t, tt.name, sql)
		})
	}
}

func TestBuildHashQuery_ExcludesThresholdAndDropColumns(t *testing.T) {
	b := newBuilder(t, supplierTable(), recon.Source, sqlrender.Databricks)
	sql, err := b.BuildHashQuery()
	require.NoError(t, err)

	assert.NotContains(t, sql, "s_acctbal")
	assert.NotContains(t, sql, "s_comment")
	assert.Equal(t, 1, strings.Count(sql, " AS "+HashColumn))
}

func TestBuildHashQuery_SameColumnOrderOnBothLayers(t *testing.T) {
	src := newBuilder(t, supplierTable(), recon.Source, sqlrender.Databricks)
	tgt := newBuilder(t, supplierTable(), recon.Target, sqlrender.Databricks)

	srcSQL, err := src.BuildHashQuery()
	require.NoError(t, err)
	tgtSQL, err := tgt.BuildHashQuery()
	require.NoError(t, err)

	// s_address_t is ordered by its source name, ahead of s_name
	assert.Less(t, strings.Index(srcSQL, "TRIM(s_address)"), strings.Index(srcSQL, "trim(s_name)"))
	assert.Less(t, strings.Index(tgtSQL, "TRIM(s_address_t)"), strings.Index(tgtSQL, "trim(s_name)"))
}

func TestBuildHashQuery_PartitionColumnIsAKey(t *testing.T) {
	spec := supplierSpec()
	spec.JdbcReaderOptions = &recon.JdbcReaderOptions{NumberPartitions: 4, PartitionColumn: "S_ACCTBAL"}
	table := recon.NewTable(spec)

	src := newBuilder(t, table, recon.Source, sqlrender.Databricks)
	sql, err := src.BuildHashQuery()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql,
		"AS hash_value_recon, COALESCE(TRIM(s_acctbal), '') AS s_acctbal, COALESCE(TRIM(s_nationkey), '') AS s_nationkey, COALESCE(TRIM(s_suppkey), '') AS s_suppkey FROM :tbl WHERE s_nationkey=1"),
		sql)

	// partitioned reads only exist on the source side
	tgt := newBuilder(t, table, recon.Target, sqlrender.Databricks)
	sql, err = tgt.BuildHashQuery()
	require.NoError(t, err)
	assert.NotContains(t, sql, "s_acctbal")
}

func TestBuildHashQuery_MappedJoinColumn(t *testing.T) {
	table := recon.NewTable(recon.TableSpec{
		SourceName:    "orders",
		TargetName:    "orders_t",
		JoinColumns:   []string{"o_id"},
		ColumnMapping: []recon.ColumnMapping{{SourceName: "o_id", TargetName: "order_id"}},
	})
	schema := []recon.Schema{{ColumnName: "order_id", DataType: "bigint"}, {ColumnName: "total", DataType: "decimal(10,2)"}}

	b, err := New(table, schema, recon.Target, sqlrender.Databricks)
	require.NoError(t, err)
	sql, err := b.BuildHashQuery()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT LOWER(SHA2(CONCAT(COALESCE(TRIM(order_id), ''), COALESCE(TRIM(total), '')), 256)) AS hash_value_recon, COALESCE(TRIM(order_id), '') AS o_id FROM :tbl",
		sql)
}

func TestBuildHashQuery_NoColumns(t *testing.T) {
	table := recon.NewTable(recon.TableSpec{SourceName: "empty", TargetName: "empty"})
	b, err := New(table, nil, recon.Source, sqlrender.Snowflake)
	require.NoError(t, err)

	_, err = b.BuildHashQuery()
	assert.ErrorContains(t, err, "no columns to hash")
}
