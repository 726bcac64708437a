package signature

import (
	"sync"
)

// Expression-builder operations that return plain strings.
// Each one is literal when all of its arguments are literal.
var stringBuilders = []Signature{
	MustTemplate("isNull", 1, "{0} IS NULL").
		WithDoc("x IS NULL"),
	MustTemplate("isNotNull", 1, "{0} IS NOT NULL").
		WithDoc("x IS NOT NULL"),
	MustTemplate("between", 3, "{0} BETWEEN {1} AND {2}").
		WithDoc("val BETWEEN x AND y"),
	mustJoin("countDistinct", Variadic(1), JoinSpec{Prefix: "COUNT(DISTINCT ", Separator: ", ", Suffix: ")"}).
		WithDoc("COUNT(DISTINCT x, y, ...)"),
	mustJoin("concat", Variadic(1), JoinSpec{}).
		WithDoc("string concatenation operator: a . b . c"),
}

// Expression-builder operations that return stringable value objects
// (functions, comparisons, composites). Their string form is only known
// at runtime, so they are modeled as wrappers and never claim literality.
var objectBuilders = []struct {
	name  string
	arity Arity
}{
	// Functions
	{"abs", Fixed(1)},
	{"sqrt", Fixed(1)},
	{"mod", Fixed(2)},
	{"sum", Fixed(2)},
	{"diff", Fixed(2)},
	{"prod", Fixed(2)},
	{"quot", Fixed(2)},
	{"avg", Fixed(1)},
	{"min", Fixed(1)},
	{"max", Fixed(1)},
	{"count", Fixed(1)},
	{"lower", Fixed(1)},
	{"upper", Fixed(1)},
	{"length", Fixed(1)},
	{"trim", Fixed(1)},
	{"literal", Fixed(1)},

	// Comparisons
	{"eq", Fixed(2)},
	{"neq", Fixed(2)},
	{"lt", Fixed(2)},
	{"lte", Fixed(2)},
	{"gt", Fixed(2)},
	{"gte", Fixed(2)},
	{"like", Fixed(2)},
	{"notLike", Fixed(2)},
	{"in", Fixed(2)},
	{"notIn", Fixed(2)},
	{"isMemberOf", Fixed(2)},
	{"isInstanceOf", Fixed(2)},

	// Composites and subquery predicates
	{"andX", Variadic(0)},
	{"orX", Variadic(0)},
	{"not", Fixed(1)},
	{"exists", Fixed(1)},
	{"all", Fixed(1)},
	{"some", Fixed(1)},
	{"any", Fixed(1)},
}

// Builtins returns the built-in signatures in registration order.
func Builtins() []Signature {
	sigs := make([]Signature, 0, len(stringBuilders)+len(objectBuilders))
	sigs = append(sigs, stringBuilders...)
	for _, ob := range objectBuilders {
		sig, err := NewWrapper(ob.name, ob.arity)
		if err != nil {
			panic(err)
		}
		sigs = append(sigs, sig.WithDoc("returns a value object; never literal"))
	}
	return sigs
}

// NewDefaultBuilder returns a Builder preloaded with the built-in signatures.
// Hosts register their own signatures on it before calling Build.
func NewDefaultBuilder() *Builder {
	b := NewBuilder()
	if err := b.RegisterAll(Builtins()...); err != nil {
		panic(err)
	}
	return b
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewDefaultBuilder().Build()
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the table of built-in signatures.
// The table is built once and shared; it is immutable.
func Default() *Table {
	return defaultTable()
}

func mustJoin(name string, arity Arity, spec JoinSpec) Signature {
	sig, err := NewJoin(name, arity, spec)
	if err != nil {
		panic(err)
	}
	return sig
}
