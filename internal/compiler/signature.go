package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/literality/internal/signature"
)

// knownFields lists the fields a signature definition may declare.
var knownFields = map[string]bool{
	"arity":    true,
	"variadic": true,
	"min":      true,
	"template": true,
	"join":     true,
	"wrapper":  true,
	"doc":      true,
}

// CompileSignature parses a CUE value into a signature.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the signature struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`signature: isNull: {arity: 1, template: "{0} IS NULL"}`)
//	sig, err := CompileSignature(v.LookupPath(cue.ParsePath("signature.isNull")))
//
// A definition declares its arity with exactly one of:
//
//	arity: 3                  // fixed
//	variadic: true, min: 1    // at least min (min defaults to 0)
//
// and its rule with exactly one of:
//
//	template: "{0} BETWEEN {1} AND {2}"
//	join: {prefix: "COUNT(DISTINCT ", separator: ", ", suffix: ")"}
//	wrapper: true
func CompileSignature(v cue.Value) (*signature.Signature, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Parse name from struct label (the path selector)
	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	if err := checkKnownFields(v); err != nil {
		return nil, err
	}

	arity, err := parseArity(v)
	if err != nil {
		return nil, err
	}

	doc, _, err := lookupString(v, "doc")
	if err != nil {
		return nil, err
	}

	template, hasTemplate, err := lookupString(v, "template")
	if err != nil {
		return nil, err
	}
	wrapper, hasWrapper, err := lookupBool(v, "wrapper")
	if err != nil {
		return nil, err
	}
	joinVal := v.LookupPath(cue.ParsePath("join"))
	hasJoin := joinVal.Exists()

	rules := 0
	for _, has := range []bool{hasTemplate, hasJoin, hasWrapper} {
		if has {
			rules++
		}
	}
	if rules != 1 {
		return nil, &CompileError{
			Field:   "rule",
			Message: "exactly one of template, join, or wrapper is required",
			Pos:     v.Pos(),
		}
	}

	var sig signature.Signature
	switch {
	case hasTemplate:
		if arity.Variadic {
			return nil, &CompileError{
				Field:   "template",
				Message: "template rules require a fixed arity",
				Pos:     v.Pos(),
			}
		}
		sig, err = signature.NewTemplate(name, arity.N, template)

	case hasJoin:
		var spec signature.JoinSpec
		spec, err = parseJoin(joinVal)
		if err != nil {
			return nil, err
		}
		sig, err = signature.NewJoin(name, arity, spec)

	case hasWrapper:
		if !wrapper {
			return nil, &CompileError{
				Field:   "wrapper",
				Message: "wrapper must be true when present",
				Pos:     v.Pos(),
			}
		}
		sig, err = signature.NewWrapper(name, arity)
	}
	if err != nil {
		field := "signature"
		if errors.Is(err, signature.ErrTemplate) {
			field = "template"
		}
		return nil, &CompileError{
			Field:   field,
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	sig = sig.WithDoc(doc)
	return &sig, nil
}

// CompileSignatures compiles every field of the top-level "signature" struct.
// It collects all errors rather than stopping at the first one.
// A value without a "signature" field yields no signatures and no errors.
func CompileSignatures(v cue.Value) ([]signature.Signature, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	sigsVal := v.LookupPath(cue.ParsePath("signature"))
	if !sigsVal.Exists() {
		return nil, nil
	}

	iter, err := sigsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var sigs []signature.Signature
	var errs []error
	for iter.Next() {
		sig, err := CompileSignature(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("signature.%s: %w", iter.Label(), err))
			continue
		}
		sigs = append(sigs, *sig)
	}
	return sigs, errs
}

// CompileFiles reads and compiles signature definitions from CUE files.
// Files are compiled independently, in order; all errors are collected.
func CompileFiles(paths ...string) ([]signature.Signature, []error) {
	ctx := cuecontext.New()

	var sigs []signature.Signature
	var errs []error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		fileSigs, fileErrs := CompileSignatures(v)
		sigs = append(sigs, fileSigs...)
		errs = append(errs, fileErrs...)
	}
	return sigs, errs
}

// parseArity reads either a fixed arity or a variadic minimum.
func parseArity(v cue.Value) (signature.Arity, error) {
	n, hasArity, err := lookupInt(v, "arity")
	if err != nil {
		return signature.Arity{}, err
	}
	variadic, hasVariadic, err := lookupBool(v, "variadic")
	if err != nil {
		return signature.Arity{}, err
	}
	minArgs, hasMin, err := lookupInt(v, "min")
	if err != nil {
		return signature.Arity{}, err
	}

	switch {
	case hasArity && variadic:
		return signature.Arity{}, &CompileError{
			Field:   "arity",
			Message: "arity and variadic are mutually exclusive",
			Pos:     v.Pos(),
		}
	case hasArity:
		if hasMin {
			return signature.Arity{}, &CompileError{
				Field:   "min",
				Message: "min only applies to variadic signatures",
				Pos:     v.Pos(),
			}
		}
		if n < 0 {
			return signature.Arity{}, &CompileError{
				Field:   "arity",
				Message: fmt.Sprintf("arity must be non-negative, got %d", n),
				Pos:     v.Pos(),
			}
		}
		return signature.Fixed(n), nil
	case hasVariadic && variadic:
		if minArgs < 0 {
			return signature.Arity{}, &CompileError{
				Field:   "min",
				Message: fmt.Sprintf("min must be non-negative, got %d", minArgs),
				Pos:     v.Pos(),
			}
		}
		return signature.Variadic(minArgs), nil
	default:
		return signature.Arity{}, &CompileError{
			Field:   "arity",
			Message: "arity or variadic: true is required",
			Pos:     v.Pos(),
		}
	}
}

func parseJoin(v cue.Value) (signature.JoinSpec, error) {
	var spec signature.JoinSpec

	iter, err := v.Fields()
	if err != nil {
		return spec, &CompileError{
			Field:   "join",
			Message: "join must be a struct with prefix, separator, and suffix",
			Pos:     v.Pos(),
		}
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return spec, &CompileError{
				Field:   "join." + iter.Label(),
				Message: "must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		switch iter.Label() {
		case "prefix":
			spec.Prefix = s
		case "separator":
			spec.Separator = s
		case "suffix":
			spec.Suffix = s
		default:
			return spec, &CompileError{
				Field:   "join." + iter.Label(),
				Message: "unknown join field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return spec, nil
}

// checkKnownFields rejects typos like "templat:" that would otherwise be
// silently ignored.
func checkKnownFields(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return &CompileError{
			Field:   "signature",
			Message: "signature definition must be a struct",
			Pos:     v.Pos(),
		}
	}
	for iter.Next() {
		if !knownFields[iter.Label()] {
			return &CompileError{
				Field:   iter.Label(),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func lookupString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", true, &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, true, nil
}

func lookupBool(v cue.Value, field string) (bool, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, true, &CompileError{Field: field, Message: "must be a bool", Pos: fv.Pos()}
	}
	return b, true, nil
}

func lookupInt(v cue.Value, field string) (int, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, false, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, true, &CompileError{Field: field, Message: "must be an integer", Pos: fv.Pos()}
	}
	return int(n), true, nil
}

// CompileError is a signature definition error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors; report the first with a position
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
