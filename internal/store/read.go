package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadRuns returns the runs of a suite without their cases.
// An empty suite returns every run.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ReadRuns(ctx context.Context, suite string) ([]RunRecord, error) {
	query := `
		SELECT id, seq, suite, table_fingerprint, passed, failed, version
		FROM runs
		WHERE (? = '' OR suite = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	rows, err := s.db.QueryContext(ctx, query, suite, suite)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadRun returns a run with its cases.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, suite, table_fingerprint, passed, failed, version
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return RunRecord{}, err
	}

	run.Cases, err = s.ReadRunCases(ctx, id)
	if err != nil {
		return RunRecord{}, err
	}
	return run, nil
}

// ReadRunCases returns the case results of a run ordered by ordinal.
//
// Returns an empty slice (not nil) if the run has no cases or does not exist.
func (s *Store) ReadRunCases(ctx context.Context, runID string) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, ordinal, name, expr,
		       expected_kind, expected_value, actual_kind, actual_value, pass, error
		FROM case_results
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	cases := []CaseRecord{}
	for rows.Next() {
		var (
			c             CaseRecord
			expectedKind  string
			expectedValue []byte
			actualKind    sql.NullString
			actualValue   []byte
		)
		if err := rows.Scan(&c.ID, &c.RunID, &c.Ordinal, &c.Name, &c.Expr,
			&expectedKind, &expectedValue, &actualKind, &actualValue,
			&c.Pass, &c.Error); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}

		c.Expected, err = decodeValue(expectedKind, expectedValue)
		if err != nil {
			return nil, fmt.Errorf("case result %s: expected: %w", c.ID, err)
		}
		if actualKind.Valid {
			c.Actual, err = decodeValue(actualKind.String, actualValue)
			if err != nil {
				return nil, fmt.Errorf("case result %s: actual: %w", c.ID, err)
			}
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case results: %w", err)
	}

	return cases, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	err := row.Scan(&run.ID, &run.Seq, &run.Suite, &run.TableFingerprint,
		&run.Passed, &run.Failed, &run.Version)
	if err == sql.ErrNoRows {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
