// Package store provides SQLite-backed durable storage for harness run logs.
//
// The store is an append-only log with:
//   - Runs: one record per suite run (suite, table fingerprint, pass/fail counts)
//   - Case results: one record per case of a run, in suite order
//
// # Critical Patterns
//
// Logical ordering
//   - Runs are ordered by seq INTEGER (assigned on write), never timestamps
//   - All run queries use: ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Case queries use: ORDER BY ordinal ASC
//
// Idempotent writes
//   - Writing a run whose id already exists is a no-op
//   - A run and its cases are written in one transaction
//
// Judgments
//   - Expected and actual are stored as a kind ('literal' or 'opaque') plus
//     the literal's bytes exactly as evaluated, with no Unicode normalization
//   - actual_kind is NULL when the case errored
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: case_results reference runs
package store
