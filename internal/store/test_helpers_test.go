package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/literality/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one passing literal case and one failing
// errored case.
func createTestRun(id, suite string) RunRecord {
	return RunRecord{
		ID:               id,
		Suite:            suite,
		TableFingerprint: "test-fingerprint",
		Passed:           1,
		Failed:           1,
		Cases: []CaseRecord{
			{
				ID:       fmt.Sprintf("%s-case-0", id),
				Ordinal:  0,
				Name:     "isNullLiteralString",
				Expr:     "isNull(field)",
				Expected: ir.Literal("field IS NULL"),
				Actual:   ir.Literal("field IS NULL"),
				Pass:     true,
			},
			{
				ID:       fmt.Sprintf("%s-case-1", id),
				Ordinal:  1,
				Name:     "unbound",
				Expr:     "isNull(missing)",
				Expected: ir.Opaque{},
				Error:    "UNBOUND_LEAF: leaf \"missing\" is not bound in the environment",
			},
		},
	}
}
