package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/literality/internal/ir"
)

// WriteRun appends a run and its case results to the log and returns the
// run's seq.
//
// The run is assigned the next seq; rec.Seq and each case's RunID are
// ignored. The run and all of its cases are written in one transaction.
// Writing a run whose ID already exists is a no-op that returns the seq
// assigned when it was first written.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (int64, error) {
	if rec.ID == "" {
		return 0, fmt.Errorf("write run: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, rec.ID).Scan(&existing)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("write run: lookup: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	version := rec.Version
	if version == "" {
		version = ir.Version
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, suite, table_fingerprint, passed, failed, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		seq,
		rec.Suite,
		rec.TableFingerprint,
		rec.Passed,
		rec.Failed,
		version,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	for _, c := range rec.Cases {
		if err := writeCase(ctx, tx, rec.ID, c); err != nil {
			return 0, fmt.Errorf("write run: case %d (%s): %w", c.Ordinal, c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

func writeCase(ctx context.Context, tx *sql.Tx, runID string, c CaseRecord) error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}

	expectedKind, expectedValue, err := encodeValue(c.Expected)
	if err != nil {
		return fmt.Errorf("expected: %w", err)
	}

	var actualKind sql.NullString
	var actualValue []byte
	if c.Actual != nil {
		kind, value, err := encodeValue(c.Actual)
		if err != nil {
			return fmt.Errorf("actual: %w", err)
		}
		actualKind = sql.NullString{String: kind, Valid: true}
		actualValue = value
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO case_results
		(id, run_id, ordinal, name, expr,
		 expected_kind, expected_value, actual_kind, actual_value, pass, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		runID,
		c.Ordinal,
		c.Name,
		c.Expr,
		expectedKind,
		expectedValue,
		actualKind,
		actualValue,
		c.Pass,
		c.Error,
	)
	return err
}

// Value kinds stored in the *_kind columns.
const (
	kindLiteral = "literal"
	kindOpaque  = "opaque"
)

// encodeValue splits a judgment into its kind and the literal's raw bytes.
// The bytes are stored untouched: no Unicode normalization, no UTF-8
// repair. Opaque values have no bytes.
func encodeValue(v ir.Value) (string, []byte, error) {
	switch val := v.(type) {
	case ir.Literal:
		// Non-nil even when empty, so the empty literal is not stored as NULL.
		raw := make([]byte, len(val))
		copy(raw, val)
		return kindLiteral, raw, nil
	case ir.Opaque:
		return kindOpaque, nil, nil
	case nil:
		return "", nil, fmt.Errorf("value is nil")
	default:
		return "", nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// decodeValue rebuilds a judgment from its stored kind and bytes.
func decodeValue(kind string, raw []byte) (ir.Value, error) {
	switch kind {
	case kindLiteral:
		return ir.Literal(raw), nil
	case kindOpaque:
		return ir.Opaque{}, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
}
