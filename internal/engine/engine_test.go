package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
)

func leaf(name string) ir.Node { return ir.NewLeaf(name) }

func call(op string, args ...ir.Node) ir.Node { return ir.NewCall(op, args...) }

func TestEvaluate_Scenarios(t *testing.T) {
	e := New(signature.Default())

	tests := []struct {
		name     string
		node     ir.Node
		env      ir.Env
		expected ir.Value
	}{
		{
			name:     "isNull literal",
			node:     call("isNull", leaf("field")),
			env:      ir.Env{"field": ir.Literal("field")},
			expected: ir.Literal("field IS NULL"),
		},
		{
			name:     "isNull opaque",
			node:     call("isNull", leaf("field")),
			env:      ir.Env{"field": ir.Opaque{}},
			expected: ir.Opaque{},
		},
		{
			name:     "isNotNull literal",
			node:     call("isNotNull", leaf("field")),
			env:      ir.Env{"field": ir.Literal("field")},
			expected: ir.Literal("field IS NOT NULL"),
		},
		{
			name: "between literal",
			node: call("between", leaf("field"), leaf("lo"), leaf("hi")),
			env: ir.Env{
				"field": ir.Literal("field"),
				"lo":    ir.Literal("'value_1'"),
				"hi":    ir.Literal("'value_2'"),
			},
			expected: ir.Literal("field BETWEEN 'value_1' AND 'value_2'"),
		},
		{
			name: "between opaque low",
			node: call("between", leaf("field"), leaf("lo"), leaf("hi")),
			env: ir.Env{
				"field": ir.Literal("field"),
				"lo":    ir.Opaque{},
				"hi":    ir.Literal("'value_2'"),
			},
			expected: ir.Opaque{},
		},
		{
			name:     "countDistinct literal",
			node:     call("countDistinct", leaf("a"), leaf("b"), leaf("c")),
			env:      ir.Env{"a": ir.Literal("A"), "b": ir.Literal("B"), "c": ir.Literal("C")},
			expected: ir.Literal("COUNT(DISTINCT A, B, C)"),
		},
		{
			name:     "countDistinct opaque first",
			node:     call("countDistinct", leaf("a"), leaf("b"), leaf("c")),
			env:      ir.Env{"a": ir.Opaque{}, "b": ir.Literal("B"), "c": ir.Literal("C")},
			expected: ir.Opaque{},
		},
		{
			name: "between with concatenated opaque bound",
			node: call("between",
				leaf("field"),
				call("concat", leaf("q"), leaf("value"), leaf("q")),
				leaf("hi")),
			env: ir.Env{
				"field": ir.Literal("field"),
				"q":     ir.Literal("'"),
				"value": ir.Opaque{},
				"hi":    ir.Literal("'value_2'"),
			},
			expected: ir.Opaque{},
		},
		{
			name: "between with concatenated literal bound",
			node: call("between",
				leaf("field"),
				call("concat", leaf("q"), leaf("value"), leaf("q")),
				leaf("hi")),
			env: ir.Env{
				"field": ir.Literal("field"),
				"q":     ir.Literal("'"),
				"value": ir.Literal("A"),
				"hi":    ir.Literal("'value_2'"),
			},
			expected: ir.Literal("field BETWEEN 'A' AND 'value_2'"),
		},
		{
			name:     "isNull of value object",
			node:     call("isNull", call("mod", leaf("field"), leaf("zero"))),
			env:      ir.Env{"field": ir.Literal("field"), "zero": ir.Literal("0")},
			expected: ir.Opaque{},
		},
		{
			name:     "between of value object",
			node:     call("between", call("abs", leaf("field")), leaf("lo"), leaf("hi")),
			env:      ir.Env{"field": ir.Literal("field"), "lo": ir.Literal("10"), "hi": ir.Literal("30")},
			expected: ir.Opaque{},
		},
		{
			name:     "bare leaf",
			node:     leaf("field"),
			env:      ir.Env{"field": ir.Literal("field")},
			expected: ir.Literal("field"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := e.Evaluate(tt.node, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestEvaluate_UnregisteredOperationIsOpaque(t *testing.T) {
	e := New(signature.Default())

	v, err := e.Evaluate(call("noSuchOp", leaf("a")), ir.Env{"a": ir.Literal("A")})
	require.NoError(t, err)
	assert.Equal(t, ir.Opaque{}, v)

	// Registered name, unregistered arity
	v, err = e.Evaluate(call("isNull", leaf("a"), leaf("a")), ir.Env{"a": ir.Literal("A")})
	require.NoError(t, err)
	assert.Equal(t, ir.Opaque{}, v)
}

func TestEvaluate_NilTable(t *testing.T) {
	e := New(nil)

	v, err := e.Evaluate(call("isNull", leaf("a")), ir.Env{"a": ir.Literal("A")})
	require.NoError(t, err)
	assert.Equal(t, ir.Opaque{}, v)
}

func TestEvaluate_UnboundLeaf(t *testing.T) {
	e := New(signature.Default())

	node := call("between", leaf("field"), call("concat", leaf("q"), leaf("missing")), leaf("hi"))
	env := ir.Env{"field": ir.Literal("field"), "q": ir.Literal("'"), "hi": ir.Literal("x")}

	v, err := e.Evaluate(node, env)
	require.Error(t, err)
	assert.Nil(t, v)
	assert.True(t, IsUnboundLeaf(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing", re.Leaf)
	assert.Equal(t, "/1/1", re.Path)
	assert.Contains(t, err.Error(), "UNBOUND_LEAF")
}

func TestEvaluate_UnboundLeafWrapped(t *testing.T) {
	e := New(signature.Default())
	_, err := e.Evaluate(leaf("x"), nil)
	require.Error(t, err)

	wrapped := fmt.Errorf("case isNull: %w", err)
	assert.True(t, IsUnboundLeaf(wrapped))
	assert.False(t, IsMalformedNode(wrapped))
}

func TestEvaluate_NilBindingIsUnbound(t *testing.T) {
	e := New(signature.Default())
	_, err := e.Evaluate(leaf("x"), ir.Env{"x": nil})
	assert.True(t, IsUnboundLeaf(err))
}

func TestEvaluate_MalformedNodes(t *testing.T) {
	e := New(signature.Default())

	_, err := e.Evaluate(nil, ir.Env{})
	assert.True(t, IsMalformedNode(err))

	_, err = e.Evaluate(ir.Call{Op: "isNull", Args: []ir.Node{nil}}, ir.Env{})
	assert.True(t, IsMalformedNode(err))
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "/0", re.Path)
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	e := New(signature.Default())

	node := call("isNull", leaf("field"))
	env := ir.Env{"field": ir.Literal("field")}
	before := node.String()

	_, err := e.Evaluate(node, env)
	require.NoError(t, err)

	assert.Equal(t, before, node.String())
	assert.Equal(t, ir.Env{"field": ir.Literal("field")}, env)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := New(signature.Default())
	node := call("countDistinct", leaf("a"), call("concat", leaf("b"), leaf("c")))
	env := ir.Env{"a": ir.Literal("A"), "b": ir.Literal("B"), "c": ir.Literal("C")}

	first, err := e.Evaluate(node, env)
	require.NoError(t, err)
	second, err := e.Evaluate(node, env)
	require.NoError(t, err)

	assert.Equal(t, ir.Literal("COUNT(DISTINCT A, BC)"), first)
	assert.Equal(t, first, second)
}

func TestEvaluate_Concurrent(t *testing.T) {
	e := New(signature.Default())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			field := fmt.Sprintf("f%d", i)
			env := ir.Env{"x": ir.Literal(field)}
			v, err := e.Evaluate(call("isNotNull", leaf("x")), env)
			assert.NoError(t, err)
			assert.Equal(t, ir.Literal(field+" IS NOT NULL"), v)
		}(i)
	}
	wg.Wait()
}

func TestExplain(t *testing.T) {
	e := New(signature.Default())

	node := call("isNull", call("mod", leaf("field"), leaf("zero")))
	env := ir.Env{"field": ir.Literal("field"), "zero": ir.Literal("0")}

	exp, err := e.Explain(node, env)
	require.NoError(t, err)
	assert.Equal(t, ir.Opaque{}, exp.Value)

	require.Len(t, exp.Steps, 4)
	assert.Equal(t, Step{Path: "/0/0", Expr: "field", Value: ir.Literal("field")}, exp.Steps[0])
	assert.Equal(t, Step{Path: "/0/1", Expr: "zero", Value: ir.Literal("0")}, exp.Steps[1])
	assert.Equal(t, Step{Path: "/0", Expr: "mod(field, zero)", Value: ir.Opaque{}, Signature: "mod/2"}, exp.Steps[2])
	assert.Equal(t, Step{Path: "/", Expr: "isNull(mod(field, zero))", Value: ir.Opaque{}, Signature: "isNull/1"}, exp.Steps[3])
}

func TestExplain_Fallback(t *testing.T) {
	e := New(signature.Default())

	exp, err := e.Explain(call("unknown", leaf("a")), ir.Env{"a": ir.Literal("A")})
	require.NoError(t, err)

	last := exp.Steps[len(exp.Steps)-1]
	assert.True(t, last.Fallback)
	assert.Equal(t, "unknown/1", last.Signature)
}

func TestExplain_Error(t *testing.T) {
	e := New(signature.Default())
	exp, err := e.Explain(call("isNull", leaf("a")), ir.Env{})
	assert.Nil(t, exp)
	assert.True(t, IsUnboundLeaf(err))
}

func TestWithLogger_DebugsFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(signature.Default(), WithLogger(logger))

	_, err := e.Evaluate(call("unknown", leaf("a")), ir.Env{"a": ir.Literal("A")})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "unregistered operation")
	assert.Contains(t, buf.String(), "op=unknown")
}

func TestNew_Table(t *testing.T) {
	table := signature.Default()
	assert.Same(t, table, New(table).Table())
}
