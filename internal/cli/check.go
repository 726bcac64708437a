package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/harness"
)

// CheckResult is the check command's output.
type CheckResult struct {
	Fingerprint string              `json:"fingerprint"`
	Signatures  int                 `json:"signatures"`
	Violations  []harness.Violation `json:"violations"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the signature table's properties",
		Long: `Sample every signature in the table and verify that:

  - all-literal arguments produce exactly the declared output
  - an opaque argument makes the result opaque
  - evaluation is deterministic
  - unregistered operations and unaccepted arities fall back to opaque

Exit codes:
  0 - No violations
  1 - One or more violations
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	table, err := opts.Table()
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return err
	}

	result := CheckResult{
		Fingerprint: table.Fingerprint(),
		Signatures:  table.Len(),
		Violations:  harness.CheckProperties(table),
	}
	if result.Violations == nil {
		result.Violations = []harness.Violation{}
	}

	if len(result.Violations) == 0 {
		return formatter.Render(result, func(w io.Writer) {
			fmt.Fprintf(w, "✓ %d signature(s), no violations\n", result.Signatures)
		})
	}

	if formatter.IsJSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodePropertyFailed,
				Message: fmt.Sprintf("%d property violation(s)", len(result.Violations)),
			},
		}); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %d property violation(s)\n", len(result.Violations))
		for _, v := range result.Violations {
			fmt.Fprintf(w, "  %s\n", v.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d property violation(s)", len(result.Violations)))
}
