package ir

// The literality lattice has two levels: every Literal sits below Opaque.
// Distinct literals are incomparable; their least upper bound is Opaque.
//
//	      Opaque
//	   /    |    \
//	'a'    'b'   ...

// Leq reports whether a ⊑ b in the literality lattice.
// Literal(x) ⊑ Literal(x), and every value ⊑ Opaque.
func Leq(a, b Value) bool {
	if IsOpaque(b) {
		return true
	}
	if IsOpaque(a) {
		return false
	}
	return Equal(a, b)
}

// Join returns the least upper bound of a and b.
// Equal literals stay literal; anything else widens to Opaque.
//
// This is the lattice join used for fallback decisions. Operations that
// combine literals into a new literal define their own rule in the
// signature table.
func Join(a, b Value) Value {
	if Equal(a, b) {
		return a
	}
	return Opaque{}
}

// Literals returns the concrete strings of args when every argument is a
// Literal. It returns false as soon as one argument is Opaque (or nil).
func Literals(args []Value) ([]string, bool) {
	out := make([]string, len(args))
	for i, arg := range args {
		s, ok := AsLiteral(arg)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
