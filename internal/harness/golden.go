package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
)

// Snapshot renders a result's case outcomes as canonical JSON.
//
// Judgments are rendered with ir.TypeString so the snapshot reads like the
// type assertions it replaces. Run IDs and table fingerprints are left out;
// the snapshot only changes when a judgment does.
func Snapshot(result *Result) ([]byte, error) {
	cases := make([]any, len(result.Cases))
	for i, c := range result.Cases {
		m := map[string]any{
			"name":     c.Name,
			"expr":     c.Expr,
			"expected": ir.TypeString(c.Expected),
			"pass":     c.Pass,
		}
		if c.Actual != nil {
			m["actual"] = ir.TypeString(c.Actual)
		}
		if c.Error != "" {
			m["error"] = c.Error
		}
		cases[i] = m
	}

	return ir.MarshalCanonical(map[string]any{
		"suite": result.Suite,
		"cases": cases,
	})
}

// RunWithGolden runs a suite and compares its snapshot against a golden file.
// The golden file is stored in testdata/golden/{suite.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the suite cannot run.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, suite *Suite, table *signature.Table, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(suite, table, opts...)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, suite.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden file
// without re-running the suite.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
