package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/literality/internal/compiler"
	"github.com/roach88/literality/internal/signature"
)

// LoadMode controls how errors are handled during signature loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the signatures loaded from a directory.
type LoadResult struct {
	Signatures []signature.Signature
	CUEValue   cue.Value // The raw CUE value for additional processing
	FileCount  int       // Number of CUE files found
}

// LoadError represents an error that occurred during signature loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSignatures loads and compiles CUE signature definitions from a directory.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSignatures(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("signatures directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing signatures directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	sigsVal := value.LookupPath(cue.ParsePath("signature"))
	if !sigsVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no signatures found"}}
	}

	iter, err := sigsVal.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating signatures: %v", err)}}
	}

	var errs []error
	for iter.Next() {
		sig, compileErr := compiler.CompileSignature(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "signature."+iter.Label()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Signatures = append(result.Signatures, *sig)
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File or database write error

	// Signature definition errors
	ErrCodeArity        = "E101" // Missing or invalid arity
	ErrCodeRule         = "E102" // Missing or conflicting rule
	ErrCodeTemplate     = "E103" // Invalid template
	ErrCodeJoin         = "E104" // Invalid join
	ErrCodeUnknownField = "E105" // Unknown field in a definition
	ErrCodeConflict     = "E106" // Conflicts with a registered signature

	// Evaluation errors
	ErrCodeSyntax      = "E201" // Expression does not parse
	ErrCodeUnboundLeaf = "E202" // Leaf without a binding
	ErrCodeBinding     = "E203" // Malformed --lit/--opaque flag

	// Harness errors
	ErrCodeTestFailed     = "E301" // One or more suites failed
	ErrCodePropertyFailed = "E302" // Property check violations
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "arity", "variadic", "min":
		return ErrCodeArity
	case "rule", "wrapper":
		return ErrCodeRule
	case "template":
		return ErrCodeTemplate
	case "join", "join.prefix", "join.separator", "join.suffix":
		return ErrCodeJoin
	case "signature", "doc", "cue":
		return ErrCodeGeneric
	default:
		if len(field) > 5 && field[:5] == "join." {
			return ErrCodeJoin
		}
		return ErrCodeUnknownField
	}
}
