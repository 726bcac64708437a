package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
	"github.com/roach88/literality/internal/store"
	"github.com/roach88/literality/internal/testutil"
)

func TestResult_Record(t *testing.T) {
	suite := loadSuite(t, "expression_builder")
	result, err := Run(suite, signature.Default(),
		WithRunIDGenerator(testutil.NewFixedIDGenerator("test-run-rec")))
	require.NoError(t, err)

	rec, err := result.Record()
	require.NoError(t, err)

	assert.Equal(t, "test-run-rec", rec.ID)
	assert.Equal(t, "expression_builder", rec.Suite)
	assert.Equal(t, 15, rec.Passed)
	assert.Equal(t, 0, rec.Failed)
	assert.Equal(t, ir.Version, rec.Version)
	require.Len(t, rec.Cases, 15)

	seen := make(map[string]bool)
	for i, c := range rec.Cases {
		assert.Equal(t, i, c.Ordinal)
		assert.NotEmpty(t, c.ID)
		assert.False(t, seen[c.ID], "case IDs must be unique")
		seen[c.ID] = true
	}

	// Same case, same content hash
	want, err := ir.CaseID(
		ir.NewCall("isNull", ir.NewLeaf("field")),
		ir.Env{"field": ir.Literal("field")},
	)
	require.NoError(t, err)
	assert.Equal(t, want, result.Cases[0].ID)
}

func TestResult_RecordRoundTripsThroughStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	gen := testutil.NewSequentialIDGenerator("run")
	suite := loadSuite(t, "expression_builder")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := Run(suite, signature.Default(), WithRunIDGenerator(gen))
		require.NoError(t, err)
		rec, err := result.Record()
		require.NoError(t, err)
		_, err = st.WriteRun(ctx, rec)
		require.NoError(t, err)
	}

	runs, err := st.ReadRuns(ctx, "expression_builder")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)

	cases, err := st.ReadRunCases(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, cases, 15)
	assert.Equal(t, ir.Literal("COUNT(DISTINCT A, B, C)"), cases[8].Actual)
	assert.Equal(t, ir.Opaque{}, cases[14].Actual)
}
