package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a step does not meet its expectation.
type AssertionError struct {
	Step     int
	Expected string
	Actual   string
	SQL      string // rendered query, empty when the step failed
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: queries[%d]\n", e.Step)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "\nSQL:\n  %s\n", e.SQL)
	}
	return buf.String()
}

// EvaluateStep checks one step result against its expectation. A step
// without an expectation must render.
func EvaluateStep(index int, step QueryStep, res StepResult) []error {
	fail := func(expected, actual string) error {
		return &AssertionError{Step: index, Expected: expected, Actual: actual, SQL: res.SQL}
	}

	expect := step.Expect
	if expect != nil && expect.Error != "" {
		switch {
		case !res.Failed():
			return []error{fail("error "+expect.Error, "query rendered")}
		case res.ErrorCode != expect.Error:
			return []error{fail("error "+expect.Error, res.Err)}
		}
		return nil
	}
	if res.Failed() {
		return []error{fail("query rendered", res.Err)}
	}
	if expect == nil {
		return nil
	}

	var errs []error
	if expect.Equals != "" && res.SQL != strings.TrimSpace(expect.Equals) {
		errs = append(errs, fail(fmt.Sprintf("SQL %q", strings.TrimSpace(expect.Equals)), fmt.Sprintf("SQL %q", res.SQL)))
	}
	for _, s := range expect.Contains {
		if !strings.Contains(res.SQL, s) {
			errs = append(errs, fail(fmt.Sprintf("SQL containing %q", s), "not found"))
		}
	}
	for _, s := range expect.NotContains {
		if strings.Contains(res.SQL, s) {
			errs = append(errs, fail(fmt.Sprintf("SQL without %q", s), "found"))
		}
	}
	return errs
}
