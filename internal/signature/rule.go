package signature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/literality/internal/ir"
)

// Rule combines argument literalities into a result literality.
// Rules MUST be pure and total: no side effects, no panics, and an
// ir.Opaque argument never produces a Literal unless the rule can prove it.
type Rule func(args []ir.Value) ir.Value

// Kind identifies how a signature computes its result.
type Kind string

const (
	// KindTemplate substitutes {i} placeholders with argument i.
	KindTemplate Kind = "template"

	// KindJoin concatenates all arguments with a prefix, separator, and suffix.
	KindJoin Kind = "join"

	// KindWrapper always yields Opaque. It models operations that return
	// stringable value objects rather than literal strings.
	KindWrapper Kind = "wrapper"

	// KindFallback is the rule used for unregistered operations.
	KindFallback Kind = "fallback"

	// KindCustom is a rule supplied as Go code by the host.
	KindCustom Kind = "custom"
)

// JoinSpec describes a joined rule:
//
//	prefix + join(args, separator) + suffix
type JoinSpec struct {
	Prefix    string `json:"prefix"`
	Separator string `json:"separator"`
	Suffix    string `json:"suffix"`
}

// templatePart is either literal text (arg < 0) or an argument reference.
type templatePart struct {
	text string
	arg  int
}

// parseTemplate splits a format into text and {i} placeholder parts.
// A '{' that does not start a well-formed placeholder is an error, so typos
// like "{0" or "{x}" are caught when the signature is registered.
func parseTemplate(format string) ([]templatePart, int, error) {
	var parts []templatePart
	maxArg := -1

	var text strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '}' {
			return nil, 0, fmt.Errorf("unmatched '}' at offset %d", i)
		}
		if c != '{' {
			text.WriteByte(c)
			continue
		}

		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			return nil, 0, fmt.Errorf("unterminated placeholder at offset %d", i)
		}
		digits := format[i+1 : i+end]
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 || digits == "" || digits[0] == '+' || digits[0] == '-' {
			return nil, 0, fmt.Errorf("invalid placeholder %q at offset %d", format[i:i+end+1], i)
		}

		if text.Len() > 0 {
			parts = append(parts, templatePart{text: text.String(), arg: -1})
			text.Reset()
		}
		parts = append(parts, templatePart{arg: n})
		if n > maxArg {
			maxArg = n
		}
		i += end
	}
	if text.Len() > 0 {
		parts = append(parts, templatePart{text: text.String(), arg: -1})
	}

	return parts, maxArg, nil
}

// templateRule builds a rule from parsed template parts.
func templateRule(parts []templatePart) Rule {
	return func(args []ir.Value) ir.Value {
		strs, ok := ir.Literals(args)
		if !ok {
			return ir.Opaque{}
		}
		var buf strings.Builder
		for _, p := range parts {
			if p.arg < 0 {
				buf.WriteString(p.text)
				continue
			}
			if p.arg >= len(strs) {
				return ir.Opaque{}
			}
			buf.WriteString(strs[p.arg])
		}
		return ir.Literal(buf.String())
	}
}

// joinRule builds a rule from a JoinSpec.
func joinRule(spec JoinSpec) Rule {
	return func(args []ir.Value) ir.Value {
		strs, ok := ir.Literals(args)
		if !ok {
			return ir.Opaque{}
		}
		return ir.Literal(spec.Prefix + strings.Join(strs, spec.Separator) + spec.Suffix)
	}
}

// wrapperRule never claims literality.
func wrapperRule(args []ir.Value) ir.Value {
	return ir.Opaque{}
}

// Fallback is the rule applied to operations absent from the table.
// It never claims literality, whatever the arguments are.
func Fallback() Rule {
	return wrapperRule
}
