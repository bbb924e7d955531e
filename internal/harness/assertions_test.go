package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStep(t *testing.T) {
	rendered := StepResult{Kind: "hash", SQL: "SELECT a FROM :tbl"}
	failed := StepResult{Kind: "hash", Err: "UNSUPPORTED_DIALECT: x", ErrorCode: "UNSUPPORTED_DIALECT"}

	tests := []struct {
		name   string
		expect *ExpectClause
		res    StepResult
		want   []string
	}{
		{"no expectation, rendered", nil, rendered, nil},
		{"no expectation, failed", nil, failed, []string{"Expected: query rendered"}},
		{"equals", &ExpectClause{Equals: "SELECT a FROM :tbl\n"}, rendered, nil},
		{"equals mismatch", &ExpectClause{Equals: "SELECT b"}, rendered, []string{`Expected: SQL "SELECT b"`}},
		{"contains", &ExpectClause{Contains: []string{"a", ":tbl"}}, rendered, nil},
		{"contains missing", &ExpectClause{Contains: []string{"b", "c"}}, rendered, []string{`"b"`, `"c"`}},
		{"not contains", &ExpectClause{NotContains: []string{"b"}}, rendered, nil},
		{"not contains found", &ExpectClause{NotContains: []string{"a"}}, rendered, []string{`SQL without "a"`}},
		{"error", &ExpectClause{Error: "UNSUPPORTED_DIALECT"}, failed, nil},
		{"error other code", &ExpectClause{Error: "NO_SAMPLE_KEYS"}, failed, []string{"Actual: UNSUPPORTED_DIALECT: x"}},
		{"error but rendered", &ExpectClause{Error: "NO_SAMPLE_KEYS"}, rendered, []string{"Actual: query rendered"}},
		{"checks on failed step", &ExpectClause{Contains: []string{"a"}}, failed, []string{"Expected: query rendered"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateStep(2, QueryStep{Kind: "hash", Expect: tt.expect}, tt.res)
			require.Len(t, errs, len(tt.want))
			for i, want := range tt.want {
				assert.Contains(t, errs[i].Error(), want)
				assert.Contains(t, errs[i].Error(), "queries[2]")
			}
		})
	}
}

func TestAssertionError_ShowsSQL(t *testing.T) {
	err := &AssertionError{Step: 0, Expected: "x", Actual: "y", SQL: "SELECT 1"}
	assert.Equal(t, "Assertion failed: queries[0]\n  Expected: x\n  Actual: y\n\nSQL:\n  SELECT 1\n", err.Error())

	err.SQL = ""
	assert.NotContains(t, err.Error(), "SQL:")
}
