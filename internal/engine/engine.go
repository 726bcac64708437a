package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
)

// Evaluator resolves the literality of expression trees.
//
// Thread-safety model:
//   - Evaluate() and Explain(): safe from any goroutine
//   - The signature table is immutable; the evaluator holds no mutable state
type Evaluator struct {
	table  *signature.Table
	logger *slog.Logger
}

// Option allows configuration of evaluator parameters.
type Option func(*Evaluator)

// WithLogger sets the logger used for debug diagnostics.
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Evaluator over the given signature table.
//
// A nil table is valid and behaves as an empty table: every call node
// resolves through the fallback rule and yields Opaque.
func New(table *signature.Table, opts ...Option) *Evaluator {
	e := &Evaluator{
		table:  table,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the signature table the evaluator consults.
func (e *Evaluator) Table() *signature.Table {
	return e.table
}

// Evaluate returns the literality of the tree rooted at n.
//
// Leaves are resolved from env; a leaf with no binding fails the whole
// evaluation with an UNBOUND_LEAF RuntimeError. Call nodes evaluate their
// arguments left to right and apply the signature registered for
// (op, len(args)), or the fallback rule when none is registered.
func (e *Evaluator) Evaluate(n ir.Node, env ir.Env) (ir.Value, error) {
	return e.walk(n, env, rootPath, nil)
}

// Step records the judgment for one node during Explain.
type Step struct {
	// Path locates the node: "/" is the root, "/1/0" the first argument of
	// the root's second argument.
	Path string `json:"path"`

	// Expr is the node rendered in call notation.
	Expr string `json:"expr"`

	// Value is the node's literality.
	Value ir.Value `json:"value"`

	// Signature is the signature used for call nodes, e.g. "between/3".
	// Empty for leaves.
	Signature string `json:"signature,omitempty"`

	// Fallback is true when the call's operation was not registered.
	Fallback bool `json:"fallback,omitempty"`
}

// Explanation is the result of Explain: the root judgment plus every
// intermediate step in evaluation order (children before parents).
type Explanation struct {
	Value ir.Value `json:"value"`
	Steps []Step   `json:"steps"`
}

// Explain evaluates n like Evaluate and also records each node's judgment.
func (e *Evaluator) Explain(n ir.Node, env ir.Env) (*Explanation, error) {
	exp := &Explanation{Steps: []Step{}}
	v, err := e.walk(n, env, rootPath, func(s Step) {
		exp.Steps = append(exp.Steps, s)
	})
	if err != nil {
		return nil, err
	}
	exp.Value = v
	return exp, nil
}

const rootPath = "/"

func childPath(parent string, i int) string {
	if parent == rootPath {
		return rootPath + strconv.Itoa(i)
	}
	return parent + "/" + strconv.Itoa(i)
}

// walk evaluates n bottom-up. visit, when non-nil, receives every step in
// post-order.
func (e *Evaluator) walk(n ir.Node, env ir.Env, path string, visit func(Step)) (ir.Value, error) {
	switch node := n.(type) {
	case ir.Leaf:
		v, ok := env.Lookup(node.Name)
		if !ok {
			return nil, NewUnboundLeafError(node.Name, path)
		}
		if visit != nil {
			visit(Step{Path: path, Expr: node.Name, Value: v})
		}
		return v, nil

	case ir.Call:
		args := make([]ir.Value, len(node.Args))
		for i, arg := range node.Args {
			if arg == nil {
				return nil, NewMalformedNodeError(
					fmt.Sprintf("argument %d of %s is nil", i, node.Op), childPath(path, i))
			}
			v, err := e.walk(arg, env, childPath(path, i), visit)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}

		sig, found := e.table.Lookup(node.Op, len(args))
		if !found {
			e.logger.Debug("unregistered operation, using fallback",
				"op", node.Op,
				"argc", len(args),
				"path", path,
			)
		}
		result := sig.Apply(args)

		if visit != nil {
			visit(Step{
				Path:      path,
				Expr:      node.String(),
				Value:     result,
				Signature: sig.String(),
				Fallback:  !found,
			})
		}
		return result, nil

	case nil:
		return nil, NewMalformedNodeError("node is nil", path)

	default:
		return nil, NewMalformedNodeError(fmt.Sprintf("unsupported node type %T", n), path)
	}
}
