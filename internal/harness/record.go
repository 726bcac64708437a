package harness

import (
	"fmt"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/store"
)

// Record converts a result into a run log record.
// Case record IDs are derived from the run ID, the case ordinal, and the
// case's content hash, so re-recording the same run is idempotent.
func (r *Result) Record() (store.RunRecord, error) {
	rec := store.RunRecord{
		ID:               r.RunID,
		Suite:            r.Suite,
		TableFingerprint: r.TableFingerprint,
		Passed:           r.Passed(),
		Failed:           r.Failed(),
		Version:          ir.Version,
		Cases:            make([]store.CaseRecord, len(r.Cases)),
	}

	for i, c := range r.Cases {
		id, err := ir.CaseResultID(r.RunID, i, c.ID)
		if err != nil {
			return store.RunRecord{}, fmt.Errorf("case %s: %w", c.Name, err)
		}
		rec.Cases[i] = store.CaseRecord{
			ID:       id,
			RunID:    r.RunID,
			Ordinal:  i,
			Name:     c.Name,
			Expr:     c.Expr,
			Expected: c.Expected,
			Actual:   c.Actual,
			Pass:     c.Pass,
			Error:    c.Error,
		}
	}
	return rec, nil
}
