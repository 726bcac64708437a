package store

import "github.com/roach88/literality/internal/ir"

// RunRecord is one suite run in the log.
type RunRecord struct {
	ID               string       `json:"id"`
	Seq              int64        `json:"seq"`
	Suite            string       `json:"suite"`
	TableFingerprint string       `json:"table_fingerprint"`
	Passed           int          `json:"passed"`
	Failed           int          `json:"failed"`
	Version          string       `json:"version"`
	Cases            []CaseRecord `json:"cases,omitempty"`
}

// CaseRecord is one case outcome within a run.
type CaseRecord struct {
	ID       string   `json:"id"`
	RunID    string   `json:"run_id"`
	Ordinal  int      `json:"ordinal"`
	Name     string   `json:"name"`
	Expr     string   `json:"expr"`
	Expected ir.Value `json:"expected"`
	Actual   ir.Value `json:"actual,omitempty"` // nil when Error is set
	Pass     bool     `json:"pass"`
	Error    string   `json:"error,omitempty"`
}
