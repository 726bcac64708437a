package signature

import "fmt"

// Arity is the arity class of a signature: a fixed argument count or a
// variadic minimum.
type Arity struct {
	// N is the exact count for fixed arities and the minimum for variadic ones.
	N int `json:"n"`

	// Variadic marks the arity as "at least N".
	Variadic bool `json:"variadic,omitempty"`
}

// Fixed returns an arity that accepts exactly n arguments.
func Fixed(n int) Arity {
	return Arity{N: n}
}

// Variadic returns an arity that accepts min or more arguments.
func Variadic(min int) Arity {
	return Arity{N: min, Variadic: true}
}

// Accepts reports whether argc arguments satisfy the arity.
func (a Arity) Accepts(argc int) bool {
	if a.Variadic {
		return argc >= a.N
	}
	return argc == a.N
}

// String renders the arity as "2" or "1+".
func (a Arity) String() string {
	if a.Variadic {
		return fmt.Sprintf("%d+", a.N)
	}
	return fmt.Sprintf("%d", a.N)
}
