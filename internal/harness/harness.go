package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/literality/internal/compiler"
	"github.com/roach88/literality/internal/engine"
	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/notation"
	"github.com/roach88/literality/internal/signature"
)

// Harness is the suite execution engine.
// It evaluates every case of a suite against one signature table.
type Harness struct {
	evaluator *engine.Evaluator
	runIDs    RunIDGenerator
	logger    *slog.Logger
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger sets the logger for per-case diagnostics.
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRunIDGenerator sets the generator for Result.RunID.
// Default: UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(h *Harness) {
		if gen != nil {
			h.runIDs = gen
		}
	}
}

// Run evaluates every case of suite and returns the result.
//
// Execution flow:
// 1. Extend table with the suite's CUE signature files, if any
// 2. Parse and evaluate each case in order
// 3. Compare each judgment with the case's expectation
// 4. Return result with every case outcome and every mismatch
//
// Case failures (mismatches, parse errors, unbound leaves) are recorded in
// the result, never returned. The returned error is reserved for problems
// that prevent the suite from running at all.
func Run(suite *Suite, table *signature.Table, opts ...Option) (*Result, error) {
	if suite == nil {
		return nil, fmt.Errorf("suite is nil")
	}

	table, err := extendTable(table, suite.Signatures)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	h := &Harness{
		runIDs: UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.evaluator = engine.New(table, engine.WithLogger(h.logger))

	result := NewResult(suite.Name)
	result.RunID = h.runIDs.Generate()
	result.TableFingerprint = table.Fingerprint()

	for i := range suite.Cases {
		cr := h.runCase(&suite.Cases[i])
		result.Cases = append(result.Cases, cr)
		if !cr.Pass {
			result.AddError(failureMessage(cr))
		}
	}

	h.logger.Info("suite completed",
		"suite", suite.Name,
		"run_id", result.RunID,
		"passed", result.Passed(),
		"failed", result.Failed(),
	)

	return result, nil
}

// runCase evaluates a single case. It never fails; problems are recorded
// in the returned CaseResult.
func (h *Harness) runCase(c *Case) CaseResult {
	cr := CaseResult{Name: c.Name, Expr: c.Expr}
	if c.Expect != nil {
		cr.Expected = c.Expect.Value
	}

	node, err := notation.Parse(c.Expr)
	if err != nil {
		cr.Error = fmt.Sprintf("parse: %v", err)
		return cr
	}

	env := c.Environment()
	if id, err := ir.CaseID(node, env); err == nil {
		cr.ID = id
	}

	actual, err := h.evaluator.Evaluate(node, env)
	if err != nil {
		cr.Error = err.Error()
		h.logger.Debug("case errored", "case", c.Name, "error", err)
		return cr
	}

	cr.Actual = actual
	cr.Pass = cr.Expected != nil && ir.SameJudgment(cr.Expected, actual)

	h.logger.Debug("case evaluated",
		"case", c.Name,
		"expected", ir.TypeString(cr.Expected),
		"actual", ir.TypeString(actual),
		"pass", cr.Pass,
	)
	return cr
}

// failureMessage renders a failed case the way a type assertion reads:
//
//	isNull: isNull(field): expected 'field IS NULL', got string
func failureMessage(cr CaseResult) string {
	if cr.Error != "" {
		return fmt.Sprintf("%s: %s: expected %s, error: %s",
			cr.Name, cr.Expr, ir.TypeString(cr.Expected), cr.Error)
	}
	return fmt.Sprintf("%s: %s: expected %s, got %s",
		cr.Name, cr.Expr, ir.TypeString(cr.Expected), ir.TypeString(cr.Actual))
}

// extendTable returns table plus the signatures compiled from files.
// With no files, table is returned unchanged.
func extendTable(table *signature.Table, files []string) (*signature.Table, error) {
	if len(files) == 0 {
		return table, nil
	}

	extra, errs := compiler.CompileFiles(files...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("compile signatures: %w", errors.Join(errs...))
	}

	b := signature.NewBuilder()
	if err := b.RegisterAll(table.Signatures()...); err != nil {
		return nil, err
	}
	if err := b.RegisterAll(extra...); err != nil {
		return nil, err
	}
	return b.Build()
}
