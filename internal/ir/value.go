package ir

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing the literality of a string expression.
// Only Literal and Opaque implement it.
type Value interface {
	literality() // Sealed - only these types implement it
	String() string
}

// Literal is a string whose exact value is known at analysis time.
// The empty string is a valid literal.
type Literal string

func (Literal) literality() {}

// String renders the literal with its value for diagnostics.
func (l Literal) String() string {
	return fmt.Sprintf("Literal(%q)", string(l))
}

// MarshalJSON implements json.Marshaler for Literal. The encoding is the
// same object form used for hashing, so bytes that JSON text cannot carry
// exactly are written as literal_hex.
func (l Literal) MarshalJSON() ([]byte, error) {
	obj, err := valueToCanonical(l)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Opaque is a string whose value is only known at runtime.
// It carries no value.
type Opaque struct{}

func (Opaque) literality() {}

// String renders the opaque marker for diagnostics.
func (Opaque) String() string {
	return "Opaque"
}

// MarshalJSON implements json.Marshaler for Opaque.
func (Opaque) MarshalJSON() ([]byte, error) {
	return []byte(`{"opaque":true}`), nil
}

// NewLiteral creates a Literal value.
func NewLiteral(s string) Literal {
	return Literal(s)
}

// IsOpaque reports whether v is the opaque value.
// A nil value is treated as opaque: no literality can be claimed for it.
func IsOpaque(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Opaque)
	return ok
}

// AsLiteral returns the concrete string of a Literal.
func AsLiteral(v Value) (string, bool) {
	l, ok := v.(Literal)
	return string(l), ok
}

// Equal compares two values by content.
// Two Literals are equal iff their strings are equal. Opaque denotes "any
// string" and is never equal to anything, including another Opaque.
func Equal(a, b Value) bool {
	la, ok := a.(Literal)
	if !ok {
		return false
	}
	lb, ok := b.(Literal)
	if !ok {
		return false
	}
	return la == lb
}

// SameJudgment reports whether actual matches the expected judgment.
// Unlike Equal, an expected Opaque is satisfied by an actual Opaque.
func SameJudgment(expected, actual Value) bool {
	if IsOpaque(expected) {
		return IsOpaque(actual)
	}
	return Equal(expected, actual)
}

// TypeString renders a value the way a host analyzer reports a type:
// a Literal becomes a single-quoted constant string type with backslash and
// quote escaped, Opaque becomes the general string type.
//
//	Literal("field IS NULL")  -> 'field IS NULL'
//	Literal("a 'b'")          -> 'a \'b\''
//	Opaque                    -> string
func TypeString(v Value) string {
	l, ok := v.(Literal)
	if !ok {
		return "string"
	}
	var buf strings.Builder
	buf.WriteByte('\'')
	for _, r := range string(l) {
		if r == '\\' || r == '\'' {
			buf.WriteByte('\\')
		}
		buf.WriteRune(r)
	}
	buf.WriteByte('\'')
	return buf.String()
}

// UnmarshalValue decodes the JSON form of a value:
//
//	{"literal": "field IS NULL"}
//	{"literal_hex": "63616665cc81"}
//	{"opaque": true}
//
// Exactly one key must be present; "opaque" must be true.
func UnmarshalValue(data []byte) (Value, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("value must have exactly one of literal, literal_hex or opaque, got %d keys", len(raw))
	}

	if lit, ok := raw["literal"]; ok {
		var s string
		if err := json.Unmarshal(lit, &s); err != nil {
			return nil, fmt.Errorf("literal must be a string: %w", err)
		}
		return Literal(s), nil
	}

	if h, ok := raw["literal_hex"]; ok {
		var s string
		if err := json.Unmarshal(h, &s); err != nil {
			return nil, fmt.Errorf("literal_hex must be a string: %w", err)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("literal_hex: %w", err)
		}
		return Literal(b), nil
	}

	if op, ok := raw["opaque"]; ok {
		var b bool
		if err := json.Unmarshal(op, &b); err != nil || !b {
			return nil, fmt.Errorf("opaque must be true")
		}
		return Opaque{}, nil
	}

	return nil, fmt.Errorf("value must have exactly one of literal, literal_hex or opaque")
}

// valueToCanonical converts a value to its canonical object form.
//
// Canonical JSON normalizes strings to NFC, so a literal that is not
// already valid NFC UTF-8 is carried as hex of its bytes. Literals that
// differ only in normalization therefore hash differently.
func valueToCanonical(v Value) (map[string]any, error) {
	switch val := v.(type) {
	case Literal:
		s := string(val)
		if !utf8.ValidString(s) || !norm.NFC.IsNormalString(s) {
			return map[string]any{"literal_hex": hex.EncodeToString([]byte(s))}, nil
		}
		return map[string]any{"literal": s}, nil
	case Opaque:
		return map[string]any{"opaque": true}, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}
