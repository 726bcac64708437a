package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a contract violation detected during evaluation.
//
// Runtime errors include:
//   - Unbound leaf: a leaf name has no binding in the environment
//   - Malformed node: a nil node or an unknown node type in the tree
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Leaf is the unbound leaf name (UNBOUND_LEAF only).
	Leaf string

	// Path locates the offending node, e.g. "/1/0" for the first argument
	// of the root's second argument.
	Path string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnboundLeaf indicates a leaf with no environment binding.
	ErrCodeUnboundLeaf RuntimeErrorCode = "UNBOUND_LEAF"

	// ErrCodeMalformedNode indicates a nil or unsupported node.
	ErrCodeMalformedNode RuntimeErrorCode = "MALFORMED_NODE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnboundLeaf returns true if the error is an unbound leaf error.
// Uses errors.As to handle wrapped errors.
func IsUnboundLeaf(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnboundLeaf
	}
	return false
}

// IsMalformedNode returns true if the error is a malformed node error.
func IsMalformedNode(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeMalformedNode
	}
	return false
}

// NewUnboundLeafError creates a RuntimeError for an unbound leaf.
func NewUnboundLeafError(name, path string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnboundLeaf,
		Message: fmt.Sprintf("leaf %q is not bound in the environment", name),
		Leaf:    name,
		Path:    path,
	}
}

// NewMalformedNodeError creates a RuntimeError for a malformed node.
func NewMalformedNodeError(message, path string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMalformedNode,
		Message: message,
		Path:    path,
	}
}
