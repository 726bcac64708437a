// Package ir provides the foundational types of the literality analyzer.
//
// This package contains the value domain (Literal and Opaque), the expression
// tree built by a front end (Leaf and Call), evaluation environments, and the
// canonical JSON and content-hash helpers used by the harness and run log.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value and Node are sealed; only this package implements them
//   - Values and nodes are immutable once constructed
//   - All JSON tags use snake_case
//   - Canonical JSON has no floats and no null
package ir
