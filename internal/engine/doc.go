// Package engine implements the literality expression evaluator.
//
// The evaluator walks an expression tree bottom-up. Each leaf is resolved
// from the environment supplied with the call, and each call node is
// resolved by applying the signature table's rule to the already-evaluated
// arguments. The judgment at the root is the result.
//
// ARCHITECTURE:
//
// Stateless Evaluation:
// An Evaluator holds only an immutable signature table and a logger. Every
// Evaluate call is independent; the same tree and environment always yield
// the same result. Trees and environments are read, never mutated.
//
// Failure Model:
//   - Unbound leaf: the front end broke its contract. The evaluation fails
//     with a RuntimeError (UNBOUND_LEAF) and no partial result.
//   - Unregistered operation: not an error. The table's fallback yields Opaque.
//
// CRITICAL PATTERNS:
//
// Conservative Default:
// A result is Literal only when a registered rule proves it from literal
// arguments. False literality claims are worse than missed ones.
//
// Deterministic Order:
// Arguments are evaluated left to right, so diagnostics (Explain steps and
// the first reported error) are reproducible.
package engine
