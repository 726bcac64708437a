// Package compiler turns CUE signature definitions into signature.Signature
// values. It uses the CUE Go API directly; no cue CLI is involved.
package compiler
