package store

import (
	"context"
	"strings"
	"testing"

	"github.com/roach88/literality/internal/ir"
)

func TestWriteRun_AssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq1, err := s.WriteRun(ctx, createTestRun("run-a", "suite"))
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	seq2, err := s.WriteRun(ctx, createTestRun("run-b", "suite"))
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	if seq1 != 1 || seq2 != 2 {
		t.Errorf("seqs = (%d, %d), want (1, 2)", seq1, seq2)
	}
}

func TestWriteRun_IgnoresCallerSeq(t *testing.T) {
	s := createTestStore(t)

	rec := createTestRun("run-a", "suite")
	rec.Seq = 42

	seq, err := s.WriteRun(context.Background(), rec)
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRun("run-a", "suite")
	first, err := s.WriteRun(ctx, rec)
	if err != nil {
		t.Fatalf("first WriteRun() failed: %v", err)
	}
	if _, err := s.WriteRun(ctx, createTestRun("run-b", "suite")); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	again, err := s.WriteRun(ctx, rec)
	if err != nil {
		t.Fatalf("duplicate WriteRun() failed: %v", err)
	}
	if again != first {
		t.Errorf("duplicate seq = %d, want %d", again, first)
	}

	var runs, cases int
	s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs)
	s.db.QueryRow("SELECT COUNT(*) FROM case_results").Scan(&cases)
	if runs != 2 || cases != 4 {
		t.Errorf("counts = (%d runs, %d cases), want (2, 4)", runs, cases)
	}
}

func TestWriteRun_Atomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRun("run-a", "suite")
	rec.Cases[1].ID = rec.Cases[0].ID // primary key violation on the second case

	if _, err := s.WriteRun(ctx, rec); err == nil {
		t.Fatal("WriteRun() should fail on duplicate case id")
	}

	var runs int
	s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs)
	if runs != 0 {
		t.Errorf("runs = %d after failed write, want 0", runs)
	}
}

func TestWriteRun_RequiresIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.WriteRun(ctx, RunRecord{Suite: "suite"}); err == nil {
		t.Error("WriteRun() without id should fail")
	}

	rec := createTestRun("run-a", "suite")
	rec.Cases[0].ID = ""
	_, err := s.WriteRun(ctx, rec)
	if err == nil || !strings.Contains(err.Error(), "id is required") {
		t.Errorf("WriteRun() with empty case id: err = %v", err)
	}
}

func TestWriteRun_RequiresExpected(t *testing.T) {
	s := createTestStore(t)

	rec := createTestRun("run-a", "suite")
	rec.Cases[0].Expected = nil
	if _, err := s.WriteRun(context.Background(), rec); err == nil {
		t.Error("WriteRun() with nil expected should fail")
	}
}

func TestWriteRun_StoresKindAndBytes(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.WriteRun(context.Background(), createTestRun("run-a", "suite")); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var expectedKind, actualKind string
	var expectedValue, actualValue []byte
	err := s.db.QueryRow(
		"SELECT expected_kind, expected_value, actual_kind, actual_value FROM case_results WHERE ordinal = 0",
	).Scan(&expectedKind, &expectedValue, &actualKind, &actualValue)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if expectedKind != "literal" || string(expectedValue) != "field IS NULL" {
		t.Errorf("expected stored as (%s, %q)", expectedKind, expectedValue)
	}
	if actualKind != "literal" || string(actualValue) != "field IS NULL" {
		t.Errorf("actual stored as (%s, %q)", actualKind, actualValue)
	}

	var opaqueKind string
	var actualIsNull bool
	err = s.db.QueryRow(
		"SELECT expected_kind, actual_kind IS NULL FROM case_results WHERE ordinal = 1",
	).Scan(&opaqueKind, &actualIsNull)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if opaqueKind != "opaque" {
		t.Errorf("expected_kind = %q, want opaque", opaqueKind)
	}
	if !actualIsNull {
		t.Error("errored case should store NULL actual_kind")
	}
}

func TestWriteRun_DefaultVersion(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.WriteRun(context.Background(), createTestRun("run-a", "suite")); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var version string
	s.db.QueryRow("SELECT version FROM runs").Scan(&version)
	if version != ir.Version {
		t.Errorf("version = %q, want %q", version, ir.Version)
	}
}
