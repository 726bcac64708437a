package harness

import (
	"github.com/roach88/literality/internal/ir"
)

// CaseResult is the outcome of one suite case.
type CaseResult struct {
	// ID is the content hash of the case's expression and environment.
	// Empty when the expression failed to parse.
	ID string `json:"id,omitempty"`

	// Name is the case name from the suite.
	Name string `json:"name"`

	// Expr is the case expression in call notation.
	Expr string `json:"expr"`

	// Expected is the judgment the suite asserts.
	Expected ir.Value `json:"expected"`

	// Actual is the evaluator's judgment.
	// Nil when evaluation failed; see Error.
	Actual ir.Value `json:"actual,omitempty"`

	// Pass is true when Actual matches Expected.
	Pass bool `json:"pass"`

	// Error holds the parse or evaluation error, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a suite run.
type Result struct {
	// RunID identifies this run in the run log.
	RunID string `json:"run_id"`

	// Suite is the suite name.
	Suite string `json:"suite"`

	// TableFingerprint identifies the signature table the run used.
	TableFingerprint string `json:"table_fingerprint"`

	// Pass indicates overall success.
	// True if every case matches.
	Pass bool `json:"pass"`

	// Cases holds one result per case, in suite order.
	Cases []CaseResult `json:"cases"`

	// Errors contains one message per failed case.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for suite execution.
func NewResult(suite string) *Result {
	return &Result{
		Suite:  suite,
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Passed returns the number of passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}

// Failed returns the number of failing cases.
func (r *Result) Failed() int {
	return len(r.Cases) - r.Passed()
}
