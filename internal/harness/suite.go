package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/notation"
)

// Suite is a named set of literality fixture cases.
type Suite struct {
	// Name uniquely identifies this suite. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description"`

	// Signatures lists CUE signature files to add to the table for this suite.
	// Paths are relative to the suite file location.
	Signatures []string `yaml:"signatures,omitempty"`

	// Cases are evaluated in order.
	Cases []Case `yaml:"cases"`
}

// Case is one (expression, environment, expected judgment) triple.
type Case struct {
	// Name identifies the case within its suite.
	Name string `yaml:"name"`

	// Expr is the expression in call notation, e.g. "between(field, lo, hi)".
	Expr string `yaml:"expr"`

	// Env binds the expression's leaves.
	Env map[string]ValueSpec `yaml:"env,omitempty"`

	// Expect is the expected judgment for the whole expression.
	Expect *ValueSpec `yaml:"expect"`
}

// ValueSpec is the YAML form of a literality value.
//
// A scalar is a literal with the scalar's text; numbers keep their
// spelling, so `0` is the literal "0". The mapping forms are:
//
//	{opaque: true}
//	{literal: "field IS NULL"}
type ValueSpec struct {
	Value ir.Value
}

// Literal returns a ValueSpec for a literal.
func Literal(s string) ValueSpec {
	return ValueSpec{Value: ir.Literal(s)}
}

// Opaque returns a ValueSpec for an opaque value.
func Opaque() ValueSpec {
	return ValueSpec{Value: ir.Opaque{}}
}

// UnmarshalYAML decodes a scalar or mapping value.
func (v *ValueSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return fmt.Errorf("line %d: null is not a value (use {opaque: true} for an unknown string)", node.Line)
		}
		v.Value = ir.Literal(node.Value)
		return nil

	case yaml.MappingNode:
		var value ir.Value
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if value != nil {
				return fmt.Errorf("line %d: value must have exactly one of opaque or literal", key.Line)
			}
			switch key.Value {
			case "opaque":
				var opaque bool
				if err := val.Decode(&opaque); err != nil {
					return fmt.Errorf("line %d: opaque: %w", val.Line, err)
				}
				if !opaque {
					return fmt.Errorf("line %d: opaque must be true", val.Line)
				}
				value = ir.Opaque{}
			case "literal":
				if val.Kind != yaml.ScalarNode || val.Tag == "!!null" {
					return fmt.Errorf("line %d: literal must be a scalar", val.Line)
				}
				value = ir.Literal(val.Value)
			default:
				return fmt.Errorf("line %d: unknown value field %q", key.Line, key.Value)
			}
		}
		if value == nil {
			return fmt.Errorf("line %d: value must have exactly one of opaque or literal", node.Line)
		}
		v.Value = value
		return nil

	default:
		return fmt.Errorf("line %d: value must be a scalar or a mapping", node.Line)
	}
}

// MarshalYAML encodes literals as scalars and opaque values as {opaque: true}.
func (v ValueSpec) MarshalYAML() (any, error) {
	if s, ok := ir.AsLiteral(v.Value); ok {
		return s, nil
	}
	return map[string]bool{"opaque": true}, nil
}

// Environment converts the case's bindings to an ir.Env.
func (c *Case) Environment() ir.Env {
	env := make(ir.Env, len(c.Env))
	for name, spec := range c.Env {
		env[name] = spec.Value
	}
	return env
}

// LoadSuite reads and parses a suite YAML file.
// Signature paths are resolved relative to the suite file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, sigPath := range suite.Signatures {
		if !filepath.IsAbs(sigPath) {
			suite.Signatures[i] = filepath.Join(base, sigPath)
		}
	}
	for _, sigPath := range suite.Signatures {
		if _, err := os.Stat(sigPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid suite: signature file not found: %s", sigPath)
		}
	}

	return suite, nil
}

// ParseSuite parses and validates suite YAML.
// Signature paths are left as written.
func ParseSuite(data []byte) (*Suite, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}

	return &suite, nil
}

// ValidateSuite checks that required fields are present and every case
// expression parses.
func ValidateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Expr == "" {
			return fmt.Errorf("cases[%d] (%s): expr is required", i, c.Name)
		}
		if _, err := notation.Parse(c.Expr); err != nil {
			return fmt.Errorf("cases[%d] (%s): expr: %w", i, c.Name, err)
		}
		if c.Expect == nil || c.Expect.Value == nil {
			return fmt.Errorf("cases[%d] (%s): expect is required", i, c.Name)
		}
		for name, spec := range c.Env {
			if spec.Value == nil {
				return fmt.Errorf("cases[%d] (%s): env.%s: value is required", i, c.Name, name)
			}
		}
	}

	return nil
}
