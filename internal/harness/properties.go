package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/literality/internal/engine"
	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
)

// Property names reported in violations.
const (
	PropertyExactLiteral = "exact_literal"
	PropertyMonotonic    = "monotonic"
	PropertyFallback     = "opaque_fallback"
	PropertyIdempotent   = "idempotent"
	PropertyNoError      = "no_error"
)

// unregisteredOp is the operation name sampled for the fallback property.
// CheckProperties picks a variant absent from the table.
const unregisteredOp = "__unregistered__"

// Violation is one failed property check.
type Violation struct {
	Property  string `json:"property"`
	Signature string `json:"signature"`
	Expr      string `json:"expr"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s: expected %s, got %s",
		v.Property, v.Signature, v.Expr, v.Expected, v.Actual)
}

// CheckProperties verifies the table's algebraic guarantees and returns
// every violation found. An empty result means the table is sound.
//
// For every registered signature and every sampled argument count:
//   - all-literal arguments yield exactly the rule's output (template and
//     join rules) or Opaque (wrappers)
//   - widening any one argument to Opaque yields Opaque, never a
//     narrower judgment than the all-literal result
//   - evaluating the same tree twice yields the same judgment
//
// Unregistered operations, and registered names called with an arity the
// table does not accept, must yield Opaque without error.
func CheckProperties(table *signature.Table) []Violation {
	e := engine.New(table)
	var violations []Violation

	for _, sig := range table.Signatures() {
		for _, argc := range sampleArities(sig.Arity) {
			violations = append(violations, checkSignature(e, sig, argc)...)
		}
	}

	op := unregisteredOp
	for table.Has(op) {
		op += "_"
	}
	for argc := 0; argc <= 3; argc++ {
		violations = append(violations, checkFallback(e, op, argc, op+"/"+strconv.Itoa(argc))...)
	}

	for _, sig := range table.Signatures() {
		if sig.Arity.Variadic {
			continue
		}
		argc := sig.Arity.N + 1
		if _, ok := table.Lookup(sig.Name, argc); ok {
			continue
		}
		violations = append(violations, checkFallback(e, sig.Name, argc, sig.String())...)
	}

	return violations
}

func checkSignature(e *engine.Evaluator, sig signature.Signature, argc int) []Violation {
	var violations []Violation

	node, env, lits := sampleCall(sig.Name, argc)
	expected := expectedOutput(sig, lits)

	first, err := e.Evaluate(node, env)
	if err != nil {
		return []Violation{{
			Property:  PropertyNoError,
			Signature: sig.String(),
			Expr:      node.String(),
			Expected:  "no error",
			Actual:    err.Error(),
		}}
	}

	if expected != nil && !ir.SameJudgment(expected, first) {
		violations = append(violations, Violation{
			Property:  PropertyExactLiteral,
			Signature: sig.String(),
			Expr:      node.String(),
			Expected:  ir.TypeString(expected),
			Actual:    ir.TypeString(first),
		})
	}

	second, err := e.Evaluate(node, env)
	if err != nil || !ir.SameJudgment(first, second) {
		violations = append(violations, Violation{
			Property:  PropertyIdempotent,
			Signature: sig.String(),
			Expr:      node.String(),
			Expected:  ir.TypeString(first),
			Actual:    describe(second, err),
		})
	}

	for i := 0; i < argc; i++ {
		name := argName(i)
		widened := make(ir.Env, len(env))
		for k, v := range env {
			widened[k] = v
		}
		widened[name] = ir.Join(env[name], ir.Opaque{})

		// Widening an argument never narrows the result: it must dominate
		// both the all-literal result and the widened argument.
		want := ir.Join(first, widened[name])
		got, err := e.Evaluate(node, widened)
		if err != nil || !ir.Leq(first, got) || !ir.Leq(want, got) {
			violations = append(violations, Violation{
				Property:  PropertyMonotonic,
				Signature: sig.String(),
				Expr:      fmt.Sprintf("%s with %s opaque", node, name),
				Expected:  ir.TypeString(want),
				Actual:    describe(got, err),
			})
		}
	}

	return violations
}

func checkFallback(e *engine.Evaluator, op string, argc int, label string) []Violation {
	node, env, _ := sampleCall(op, argc)
	got, err := e.Evaluate(node, env)
	if err == nil && ir.IsOpaque(got) {
		return nil
	}
	return []Violation{{
		Property:  PropertyFallback,
		Signature: label,
		Expr:      node.String(),
		Expected:  ir.TypeString(ir.Opaque{}),
		Actual:    describe(got, err),
	}}
}

// sampleCall builds op(a0, a1, ...) with every leaf bound to a distinct literal.
func sampleCall(op string, argc int) (ir.Node, ir.Env, []string) {
	args := make([]ir.Node, argc)
	env := make(ir.Env, argc)
	lits := make([]string, argc)
	for i := 0; i < argc; i++ {
		name := argName(i)
		args[i] = ir.NewLeaf(name)
		lits[i] = "v" + strconv.Itoa(i)
		env[name] = ir.Literal(lits[i])
	}
	return ir.NewCall(op, args...), env, lits
}

// expectedOutput computes the documented result for all-literal arguments
// directly from the signature's declaration. Returns nil for custom rules,
// whose output is not declared.
func expectedOutput(sig signature.Signature, lits []string) ir.Value {
	switch sig.Kind {
	case signature.KindTemplate:
		pairs := make([]string, 0, 2*len(lits))
		for i, s := range lits {
			pairs = append(pairs, "{"+strconv.Itoa(i)+"}", s)
		}
		return ir.Literal(strings.NewReplacer(pairs...).Replace(sig.Template))
	case signature.KindJoin:
		return ir.Literal(sig.Join.Prefix + strings.Join(lits, sig.Join.Separator) + sig.Join.Suffix)
	case signature.KindWrapper, signature.KindFallback:
		return ir.Opaque{}
	default:
		return nil
	}
}

// sampleArities returns the argument counts exercised for an arity:
// the fixed count, or the variadic minimum and the two counts above it.
func sampleArities(a signature.Arity) []int {
	if !a.Variadic {
		return []int{a.N}
	}
	return []int{a.N, a.N + 1, a.N + 2}
}

func argName(i int) string {
	return "a" + strconv.Itoa(i)
}

func describe(v ir.Value, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return ir.TypeString(v)
}
