// Package notation parses the call notation used by fixture suites and the
// command line to write expression trees, e.g.
//
//	between(field, concat(q, value, q), hi)
//
// The notation has exactly two forms: a bare identifier is a leaf, and an
// identifier followed by a parenthesized argument list is a call. There are
// no literals; every input is a leaf bound through the environment.
//
//	expr  := ident | ident "(" [expr {"," expr}] ")"
//	ident := [A-Za-z_$][A-Za-z0-9_$.]*
//
// ir.Node.String renders a tree back into this notation.
package notation

import (
	"fmt"

	"github.com/roach88/literality/internal/ir"
)

// SyntaxError reports a parse failure at a byte offset in the source.
type SyntaxError struct {
	Offset  int
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

// Parse parses src into an expression tree.
func Parse(src string) (ir.Node, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty expression")
	}

	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after expression", p.src[p.pos])
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for expressions known to be valid.
func MustParse(src string) ir.Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseExpr() (ir.Node, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '(' {
		return ir.NewLeaf(name), nil
	}
	p.pos++ // consume '('

	var args []ir.Node
	p.skipSpace()
	if !p.eof() && p.src[p.pos] == ')' {
		p.pos++
		return ir.NewCall(name, args...), nil
	}

	for {
		p.skipSpace()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated argument list for %s", name)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return ir.NewCall(name, args...), nil
		default:
			return nil, p.errorf("expected ',' or ')' in arguments of %s, got %q", name, p.src[p.pos])
		}
	}
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	if p.eof() {
		return "", p.errorf("expected identifier, got end of input")
	}
	if !isIdentStart(p.src[p.pos]) {
		return "", p.errorf("expected identifier, got %q", p.src[p.pos])
	}
	p.pos++
	for !p.eof() && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

// IsIdent reports whether s is a valid leaf or operation name.
func IsIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
