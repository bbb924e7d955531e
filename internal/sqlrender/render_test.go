package sqlrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/sqlexpr"
)

func renderExpr(t *testing.T, e sqlexpr.Expr, dialect string) string {
	t.Helper()
	sql, err := RenderExpr(e, MustLookup(dialect))
	require.NoError(t, err)
	return sql
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"databricks", Databricks},
		{"Databricks", Databricks},
		{" spark ", Databricks},
		{"snowflake", Snowflake},
		{"ORACLE", Oracle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	for _, name := range []string{"", "teradata", "postgres"} {
		t.Run(name, func(t *testing.T) {
			d, err := Lookup(name)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, ErrUnknownDialect)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{Databricks, Oracle, Snowflake}, Names())
}

func TestRenderExpr_Leaves(t *testing.T) {
	assert.Equal(t, "src.a", renderExpr(t, sqlexpr.Col("a", "src"), Databricks))
	assert.Equal(t, "`my col`", renderExpr(t, &sqlexpr.Column{Name: "my col", Quoted: true}, Databricks))
	assert.Equal(t, `"my col"`, renderExpr(t, &sqlexpr.Column{Name: "my col", Quoted: true}, Snowflake))
	assert.Equal(t, "'it''s'", renderExpr(t, sqlexpr.Str("it's"), Databricks))
	assert.Equal(t, "-5.5", renderExpr(t, sqlexpr.Num("-5.5"), Databricks))
	assert.Equal(t, "NULL", renderExpr(t, &sqlexpr.Null{}, Snowflake))
	assert.Equal(t, "TRUE", renderExpr(t, &sqlexpr.Boolean{Value: true}, Snowflake))
	assert.Equal(t, "0", renderExpr(t, &sqlexpr.Boolean{Value: false}, Oracle))
	assert.Equal(t, "trim(s_address)", renderExpr(t, &sqlexpr.Raw{SQL: "trim(s_address)"}, Oracle))
}

func TestRenderExpr_Template(t *testing.T) {
	e := sqlexpr.NewTemplate("NVL(TRIM(TO_CHAR({})),'_null_recon_')", sqlexpr.Col("s_comment", "src"))
	assert.Equal(t, "NVL(TRIM(TO_CHAR(src.s_comment)),'_null_recon_')", renderExpr(t, e, Oracle))
}

func TestRenderExpr_NullSafeEquality(t *testing.T) {
	e := sqlexpr.Bin(sqlexpr.OpNullSafeEQ, sqlexpr.Col("id", "source"), sqlexpr.Col("id", "databricks"))

	assert.Equal(t, "source.id <=> databricks.id", renderExpr(t, e, Databricks))
	assert.Equal(t, "source.id IS NOT DISTINCT FROM databricks.id", renderExpr(t, e, Snowflake))
	assert.Equal(t, "DECODE(source.id, databricks.id, 1, 0) = 1", renderExpr(t, e, Oracle))
}

func TestRenderExpr_Functions(t *testing.T) {
	col := sqlexpr.Col("tags", "")

	tests := []struct {
		name    string
		expr    sqlexpr.Expr
		dialect string
		want    string
	}{
		{"coalesce", sqlexpr.Call(sqlexpr.FuncCoalesce, col, sqlexpr.Str("")), Databricks, "COALESCE(tags, '')"},
		{"sha2", sqlexpr.Call(sqlexpr.FuncSHA2, col, sqlexpr.Num("256")), Snowflake, "SHA2(tags, 256)"},
		{"concat function", sqlexpr.Call(sqlexpr.FuncConcat, col, sqlexpr.Col("b", "")), Snowflake, "CONCAT(tags, b)"},
		{"concat operator", sqlexpr.Call(sqlexpr.FuncConcat, col, sqlexpr.Col("b", "")), Oracle, "tags || b"},
		{"json databricks", sqlexpr.Call(sqlexpr.FuncJSONFormat, col), Databricks, "TO_JSON(tags)"},
		{"json oracle", sqlexpr.Call(sqlexpr.FuncJSONFormat, col), Oracle, "JSON_SERIALIZE(tags)"},
		{"sort asc", sqlexpr.Call(sqlexpr.FuncSortArray, col, &sqlexpr.Boolean{Value: true}), Databricks, "SORT_ARRAY(tags)"},
		{"sort desc", sqlexpr.Call(sqlexpr.FuncSortArray, col, &sqlexpr.Boolean{Value: false}), Databricks, "SORT_ARRAY(tags, FALSE)"},
		{"sort snowflake", sqlexpr.Call(sqlexpr.FuncSortArray, col, &sqlexpr.Boolean{Value: true}), Snowflake, "ARRAY_SORT(tags)"},
		{"array_sort", sqlexpr.Call(sqlexpr.FuncArraySort, col, &sqlexpr.Boolean{Value: true}), Snowflake, "ARRAY_SORT(tags)"},
		{"array_to_string", sqlexpr.Call(sqlexpr.FuncArrayToString, col, sqlexpr.Str(",")), Snowflake, "ARRAY_TO_STRING(tags, ',')"},
		{"array_join", sqlexpr.Call(sqlexpr.FuncArrayToString, col, sqlexpr.Str(","), sqlexpr.Str("-")), Databricks, "ARRAY_JOIN(tags, ',', '-')"},
		{"to_char", sqlexpr.Call(sqlexpr.FuncToChar, col, sqlexpr.Str("YYYY")), Oracle, "TO_CHAR(tags, 'YYYY')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderExpr(t, tt.expr, tt.dialect))
		})
	}
}

func TestRenderExpr_Conditionals(t *testing.T) {
	cond := &sqlexpr.Paren{Inner: sqlexpr.Bin(sqlexpr.OpOr,
		sqlexpr.Bin(sqlexpr.OpEQ, sqlexpr.Col("amt", "databricks"), sqlexpr.Num("0")),
		sqlexpr.Bin(sqlexpr.OpIs, sqlexpr.Col("amt", "databricks"), &sqlexpr.Null{}),
	)}
	guard := &sqlexpr.If{Cond: cond, Then: sqlexpr.Num("1"), Else: sqlexpr.Col("amt", "databricks")}

	assert.Equal(t,
		"IF((databricks.amt = 0 OR databricks.amt IS NULL), 1, databricks.amt)",
		renderExpr(t, guard, Databricks))
	assert.Equal(t,
		"CASE WHEN (databricks.amt = 0 OR databricks.amt IS NULL) THEN 1 ELSE databricks.amt END",
		renderExpr(t, guard, Snowflake))

	c := &sqlexpr.Case{
		Whens: []sqlexpr.When{
			{Cond: sqlexpr.Bin(sqlexpr.OpEQ, sqlexpr.Col("d", ""), sqlexpr.Num("0")), Then: sqlexpr.Str("Match")},
			{Cond: &sqlexpr.Between{Expr: sqlexpr.Col("d", ""), Low: sqlexpr.Num("-5"), High: sqlexpr.Num("5")}, Then: sqlexpr.Str("Warning")},
		},
		Else: sqlexpr.Str("Failed"),
	}
	assert.Equal(t,
		"CASE WHEN d = 0 THEN 'Match' WHEN d BETWEEN -5 AND 5 THEN 'Warning' ELSE 'Failed' END",
		renderExpr(t, c, Databricks))
}

func TestRender_SelectWithCTEsAndJoin(t *testing.T) {
	recon := sqlexpr.UnionOf(false,
		&sqlexpr.Select{Projections: []sqlexpr.Expr{sqlexpr.As(sqlexpr.Num("1"), "id")}},
		&sqlexpr.Select{Projections: []sqlexpr.Expr{sqlexpr.As(sqlexpr.Num("2"), "id")}},
	)
	q := &sqlexpr.Select{
		With: []*sqlexpr.CTE{
			{Name: "recon", Query: recon},
			{Name: "src", Query: &sqlexpr.Select{
				Projections: []sqlexpr.Expr{sqlexpr.As(sqlexpr.Col("id", ""), "id")},
				From:        &sqlexpr.TableRef{Name: ":tbl"},
				Where:       &sqlexpr.Raw{SQL: "id > 0"},
			}},
		},
		Projections: []sqlexpr.Expr{sqlexpr.Col("id", "src")},
		From:        &sqlexpr.TableRef{Name: "src"},
		Joins: []*sqlexpr.Join{{
			Kind:  sqlexpr.JoinInner,
			Table: &sqlexpr.TableRef{Name: "recon", Alias: "recon"},
			On:    sqlexpr.Bin(sqlexpr.OpNullSafeEQ, sqlexpr.Col("id", "src"), sqlexpr.Col("id", "recon")),
		}},
	}

	got, err := Render(q, MustLookup(Databricks))
	require.NoError(t, err)
	assert.Equal(t,
		"WITH recon AS (SELECT 1 AS id UNION SELECT 2 AS id), "+
			"src AS (SELECT id AS id FROM :tbl WHERE id > 0) "+
			"SELECT src.id FROM src INNER JOIN recon AS recon ON src.id <=> recon.id",
		got)

	got, err = Render(q, MustLookup(Oracle))
	require.NoError(t, err)
	assert.Equal(t,
		"WITH recon AS (SELECT 1 AS id FROM dual UNION SELECT 2 AS id FROM dual), "+
			"src AS (SELECT id AS id FROM :tbl WHERE id > 0) "+
			"SELECT src.id FROM src INNER JOIN recon recon ON DECODE(src.id, recon.id, 1, 0) = 1",
		got)
}

func TestRender_UnionAll(t *testing.T) {
	q := sqlexpr.UnionOf(true,
		&sqlexpr.Select{Projections: []sqlexpr.Expr{sqlexpr.Num("1")}},
		&sqlexpr.Select{Projections: []sqlexpr.Expr{sqlexpr.Num("1")}},
	)
	got, err := Render(q, MustLookup(Snowflake))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 UNION ALL SELECT 1", got)
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(nil, MustLookup(Databricks))
	assert.Error(t, err)

	_, err = Render(&sqlexpr.Select{}, MustLookup(Databricks))
	assert.ErrorContains(t, err, "without projections")

	_, err = Render(&sqlexpr.Select{Projections: []sqlexpr.Expr{nil}}, MustLookup(Databricks))
	assert.ErrorContains(t, err, "nil expression")

	_, err = RenderExpr(sqlexpr.Col("a", ""), nil)
	assert.ErrorContains(t, err, "nil dialect")
}

func TestMustLookup_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLookup("db2") })
}
