package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a sealed interface for expression tree nodes.
// Only Leaf and Call implement it.
//
// Trees are built by a front end and owned by it. The evaluator only reads
// them; nothing in this module mutates a Node after construction.
type Node interface {
	node() // Marker method - seals interface to this package
	String() string
}

// Leaf is a named input whose literality comes from the environment.
type Leaf struct {
	Name string `json:"leaf"`
}

func (Leaf) node() {}

// String renders the leaf in call notation.
func (l Leaf) String() string {
	return l.Name
}

// Call applies an operation to an ordered list of argument nodes.
// The signature key is the pair (Op, len(Args)).
type Call struct {
	Op   string `json:"call"`
	Args []Node `json:"args"`
}

func (Call) node() {}

// String renders the call in call notation, e.g. between(field, lo, hi).
func (c Call) String() string {
	var buf strings.Builder
	buf.WriteString(c.Op)
	buf.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		if arg == nil {
			buf.WriteString("<nil>")
			continue
		}
		buf.WriteString(arg.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// NewLeaf creates a Leaf node.
func NewLeaf(name string) Leaf {
	return Leaf{Name: name}
}

// NewCall creates a Call node.
// The args slice is copied so later changes by the caller are not observed.
func NewCall(op string, args ...Node) Call {
	copied := make([]Node, len(args))
	copy(copied, args)
	return Call{Op: op, Args: copied}
}

// Size returns the number of nodes in the tree rooted at n.
func Size(n Node) int {
	switch v := n.(type) {
	case Leaf:
		return 1
	case Call:
		total := 1
		for _, arg := range v.Args {
			total += Size(arg)
		}
		return total
	default:
		return 0
	}
}

// LeafNames returns the distinct leaf names referenced by n, sorted.
func LeafNames(n Node) []string {
	seen := make(map[string]struct{})
	collectLeaves(n, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectLeaves(n Node, seen map[string]struct{}) {
	switch v := n.(type) {
	case Leaf:
		seen[v.Name] = struct{}{}
	case Call:
		for _, arg := range v.Args {
			collectLeaves(arg, seen)
		}
	}
}

// Env maps leaf names to their literality.
// An Env is supplied per evaluation and is never retained.
type Env map[string]Value

// Lookup returns the value bound to name.
func (e Env) Lookup(name string) (Value, bool) {
	v, ok := e[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// nodeToCanonical converts a node to its canonical object form.
//
//	Leaf{"field"}                -> {"leaf":"field"}
//	Call{"isNull", [Leaf field]} -> {"args":[{"leaf":"field"}],"call":"isNull"}
func nodeToCanonical(n Node) (map[string]any, error) {
	switch v := n.(type) {
	case Leaf:
		return map[string]any{"leaf": v.Name}, nil
	case Call:
		args := make([]any, len(v.Args))
		for i, arg := range v.Args {
			m, err := nodeToCanonical(arg)
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			args[i] = m
		}
		return map[string]any{"call": v.Op, "args": args}, nil
	case nil:
		return nil, fmt.Errorf("nil node")
	default:
		return nil, fmt.Errorf("unsupported node type: %T", n)
	}
}
