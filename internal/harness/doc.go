// Package harness runs literality fixture suites and property checks.
//
// A suite is a YAML file of cases. Each case is an expression in call
// notation, an environment binding its leaves, and the expected judgment:
//
//	name: expression_builder
//	description: "Expression builder results keep literality"
//	cases:
//	  - name: isNullLiteralString
//	    expr: isNull(field)
//	    env: {field: field}
//	    expect: "field IS NULL"
//	  - name: isNullNonLiteralString
//	    expr: isNull(field)
//	    env: {field: {opaque: true}}
//	    expect: {opaque: true}
//
// A scalar value is a literal; {opaque: true} is an opaque string.
//
// Run evaluates every case and reports every mismatch, not only the first.
// Expected and actual judgments are rendered as types: a literal becomes a
// quoted constant ('field IS NULL') and an opaque value becomes "string".
//
// Golden snapshots (RunWithGolden, AssertGolden) store the canonical JSON of
// a suite's case results under testdata/golden. Regenerate them with:
//
//	go test ./internal/harness -update
//
// CheckProperties verifies the algebraic guarantees of a signature table:
// exact output for literal inputs, monotonicity for opaque inputs, the
// opaque fallback, and idempotence.
package harness
