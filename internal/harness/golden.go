package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the steps as text for golden comparison. Query IDs are
// left out so that snapshots stay readable.
func (r *Result) Snapshot() []byte {
	var buf strings.Builder
	for i, s := range r.Steps {
		fmt.Fprintf(&buf, "-- queries[%d] %s %s %s\n", i, s.Kind, s.Layer, s.Dialect)
		if s.Failed() {
			fmt.Fprintf(&buf, "error %s\n", s.ErrorCode)
			continue
		}
		fmt.Fprintf(&buf, "%s\n", s.SQL)
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario, fails t on unmet expectations and
// compares the rendered queries against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Snapshot())
	return nil
}
