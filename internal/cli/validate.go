package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/signature"
)

// ValidationIssue is one problem found in a signature directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Signatures int               `json:"signatures"`
	Errors     []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <signatures-dir>",
		Short: "Validate CUE signature definitions",
		Long: `Compile every signature definition in a directory and check that it
can be registered alongside the built-in table.

All problems are reported, not just the first.

Exit codes:
  0 - All definitions valid
  1 - One or more definitions invalid
  2 - Command error (missing directory, CUE load failure)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadSignatures(dir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		issue := toIssue(loadErrors[0])
		_ = formatter.Error(issue.Code, issue.Message, nil)
		return NewExitError(ExitCommandError, issue.Message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	result := ValidationResult{Valid: true}
	for _, err := range loadErrors {
		result.Errors = append(result.Errors, toIssue(err))
	}

	// Registration catches duplicates among the files and clashes with
	// built-in signatures.
	b := signature.NewDefaultBuilder()
	for _, sig := range loadResult.Signatures {
		formatter.VerboseLog("Validating signature: %s", sig)
		if err := b.Register(sig); err != nil {
			result.Errors = append(result.Errors, ValidationIssue{
				Code:    ErrCodeConflict,
				Message: err.Error(),
			})
			continue
		}
		result.Signatures++
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}

	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %d signature(s) valid\n", result.Signatures)
	})
}

func toIssue(err error) ValidationIssue {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return ValidationIssue{
			Code:    loadErr.Code,
			Message: loadErr.Message,
			File:    posFile(loadErr.Pos),
			Line:    posLine(loadErr.Pos),
		}
	}
	return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.IsJSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: fmt.Sprintf("%d validation error(s)", len(result.Errors)),
			},
		}); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %d validation error(s)\n", len(result.Errors))
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "  [%s] %s:%d: %s\n", e.Code, e.File, e.Line, e.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", e.Code, e.Message)
			}
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
}

func posFile(pos token.Pos) string {
	if !pos.IsValid() {
		return ""
	}
	return pos.Filename()
}

func posLine(pos token.Pos) int {
	if !pos.IsValid() {
		return 0
	}
	return pos.Line()
}
