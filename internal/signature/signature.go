package signature

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/roach88/literality/internal/ir"
)

// validName matches operation names: an identifier, optionally dotted.
var validName = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// ErrTemplate marks errors caused by a template string rather than by the
// signature's name or arity.
var ErrTemplate = errors.New("template")

// Signature is an immutable description of one operation's literality rule.
//
// Construct signatures with NewTemplate, NewJoin, NewWrapper, or NewCustom
// so that the Rule always agrees with the declared Kind.
type Signature struct {
	// Name is the operation name, e.g. "isNull".
	Name string `json:"name"`

	// Arity is the accepted argument count.
	Arity Arity `json:"arity"`

	// Kind is how the result is computed.
	Kind Kind `json:"kind"`

	// Template is the format string (KindTemplate only).
	Template string `json:"template,omitempty"`

	// Join is the join description (KindJoin only).
	Join *JoinSpec `json:"join,omitempty"`

	// Doc is an optional human-readable description.
	Doc string `json:"doc,omitempty"`

	rule Rule
}

// NewTemplate creates a template signature with a fixed arity.
// Placeholders {0}..{n-1} refer to arguments; referencing an argument
// beyond the arity is an error.
//
// Example:
//
//	NewTemplate("between", 3, "{0} BETWEEN {1} AND {2}")
func NewTemplate(name string, n int, format string) (Signature, error) {
	if err := validateHead(name, Fixed(n)); err != nil {
		return Signature{}, err
	}
	parts, maxArg, err := parseTemplate(format)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %s: %w: %w", name, ErrTemplate, err)
	}
	if maxArg >= n {
		return Signature{}, fmt.Errorf("signature %s: %w references {%d} but arity is %d", name, ErrTemplate, maxArg, n)
	}

	return Signature{
		Name:     name,
		Arity:    Fixed(n),
		Kind:     KindTemplate,
		Template: format,
		rule:     templateRule(parts),
	}, nil
}

// MustTemplate is like NewTemplate but panics on error.
// Use only for built-in definitions known to be valid.
func MustTemplate(name string, n int, format string) Signature {
	sig, err := NewTemplate(name, n, format)
	if err != nil {
		panic(err)
	}
	return sig
}

// NewJoin creates a joined signature.
//
// Example:
//
//	NewJoin("countDistinct", Variadic(1), JoinSpec{Prefix: "COUNT(DISTINCT ", Separator: ", ", Suffix: ")"})
func NewJoin(name string, arity Arity, spec JoinSpec) (Signature, error) {
	if err := validateHead(name, arity); err != nil {
		return Signature{}, err
	}
	j := spec
	return Signature{
		Name:  name,
		Arity: arity,
		Kind:  KindJoin,
		Join:  &j,
		rule:  joinRule(spec),
	}, nil
}

// NewWrapper creates a signature whose result is always Opaque.
func NewWrapper(name string, arity Arity) (Signature, error) {
	if err := validateHead(name, arity); err != nil {
		return Signature{}, err
	}
	return Signature{
		Name:  name,
		Arity: arity,
		Kind:  KindWrapper,
		rule:  wrapperRule,
	}, nil
}

// NewCustom creates a signature backed by a Go rule.
// The rule must be pure and total.
func NewCustom(name string, arity Arity, rule Rule) (Signature, error) {
	if err := validateHead(name, arity); err != nil {
		return Signature{}, err
	}
	if rule == nil {
		return Signature{}, fmt.Errorf("signature %s: custom rule is nil", name)
	}
	return Signature{
		Name:  name,
		Arity: arity,
		Kind:  KindCustom,
		rule:  rule,
	}, nil
}

// WithDoc returns a copy of the signature with Doc set.
func (s Signature) WithDoc(doc string) Signature {
	s.Doc = doc
	return s
}

// Apply runs the signature's rule on already-evaluated arguments.
// An argument count the arity does not accept yields Opaque, as does a
// rule that returns nil.
func (s Signature) Apply(args []ir.Value) ir.Value {
	if s.rule == nil || !s.Arity.Accepts(len(args)) {
		return ir.Opaque{}
	}
	v := s.rule(args)
	if v == nil {
		return ir.Opaque{}
	}
	return v
}

// IsFallback reports whether this is the table's fallback signature.
func (s Signature) IsFallback() bool {
	return s.Kind == KindFallback
}

// String renders the signature as name/arity, e.g. "between/3".
func (s Signature) String() string {
	return fmt.Sprintf("%s/%s", s.Name, s.Arity)
}

// canonical returns the signature definition as a canonical map.
// Custom rules are identified by name and kind only.
func (s Signature) canonical() map[string]any {
	m := map[string]any{
		"name":     s.Name,
		"arity":    s.Arity.N,
		"variadic": s.Arity.Variadic,
		"kind":     string(s.Kind),
	}
	switch s.Kind {
	case KindTemplate:
		m["template"] = s.Template
	case KindJoin:
		if s.Join != nil {
			m["join"] = map[string]any{
				"prefix":    s.Join.Prefix,
				"separator": s.Join.Separator,
				"suffix":    s.Join.Suffix,
			}
		}
	}
	return m
}

// fallbackSignature is returned by Lookup for unregistered operations.
func fallbackSignature(name string, argc int) Signature {
	return Signature{
		Name:  name,
		Arity: Fixed(argc),
		Kind:  KindFallback,
		rule:  Fallback(),
	}
}

func validateHead(name string, arity Arity) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid operation name %q", name)
	}
	if arity.N < 0 {
		return fmt.Errorf("signature %s: negative arity %d", name, arity.N)
	}
	return nil
}
