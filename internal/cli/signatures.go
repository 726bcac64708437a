package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/signature"
)

// SignaturesResult is the signatures command's output.
type SignaturesResult struct {
	Fingerprint string                `json:"fingerprint"`
	Count       int                   `json:"count"`
	Signatures  []signature.Signature `json:"signatures"`
}

// NewSignaturesCommand creates the signatures command.
func NewSignaturesCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the signature table",
		Long: `List every registered signature with its arity and rule.

The table is the built-in set plus any definitions loaded with --signatures.
The fingerprint identifies the table in the run log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignatures(rootOpts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "only list signatures with this operation name")

	return cmd
}

func runSignatures(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	table, err := opts.Table()
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return err
	}

	result := SignaturesResult{
		Fingerprint: table.Fingerprint(),
		Signatures:  []signature.Signature{},
	}
	for _, sig := range table.Signatures() {
		if name != "" && sig.Name != name {
			continue
		}
		result.Signatures = append(result.Signatures, sig)
	}
	result.Count = len(result.Signatures)

	if name != "" && result.Count == 0 {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no signature named %q (calls to it fall back to opaque)", name), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("signature not found: %s", name))
	}

	return formatter.Render(result, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, sig := range result.Signatures {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", sig, sig.Kind, describeRule(sig))
		}
		tw.Flush()
		fmt.Fprintf(w, "\n%d signatures, fingerprint %s\n", result.Count, result.Fingerprint)
	})
}

// describeRule renders a signature's rule for text listings.
func describeRule(sig signature.Signature) string {
	switch sig.Kind {
	case signature.KindTemplate:
		return fmt.Sprintf("%q", sig.Template)
	case signature.KindJoin:
		if sig.Join == nil {
			return ""
		}
		return fmt.Sprintf("%q + join(args, %q) + %q", sig.Join.Prefix, sig.Join.Separator, sig.Join.Suffix)
	case signature.KindWrapper:
		return "opaque"
	default:
		return sig.Doc
	}
}
