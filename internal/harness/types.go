package harness

// StepResult is the outcome of one query step.
type StepResult struct {
	Kind    string `json:"kind"`
	Layer   string `json:"layer"`
	Dialect string `json:"dialect"`
	SQL     string `json:"sql,omitempty"`

	// ErrorCode is the recon.ConfigErrorCode of a failed step, if any.
	ErrorCode string `json:"error_code,omitempty"`
	Err       string `json:"error,omitempty"`

	// QueryID and Seq are assigned when the query is recorded.
	QueryID string `json:"query_id,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
}

// Failed reports whether the step did not render.
func (s StepResult) Failed() bool { return s.Err != "" }

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Steps holds one entry per scenario query, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
