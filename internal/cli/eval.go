package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/engine"
	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/notation"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Literals []string // name=value bindings
	Opaque   []string // names bound to opaque values
	Explain  bool     // print every intermediate judgment
}

// EvalResult is the eval command's output.
type EvalResult struct {
	Expr  string        `json:"expr"`
	Value ir.Value      `json:"value"`
	Type  string        `json:"type"`
	Steps []engine.Step `json:"steps,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "Judge the literality of one expression",
		Long: `Evaluate an expression in call notation and print its literality.

Every leaf must be bound with --lit or --opaque. Operations missing from
the signature table fall back to an opaque result.

Exit codes:
  0 - Evaluated
  2 - Syntax error, unbound leaf, or bad binding

Examples:
  literality eval 'isNull(field)' --lit field=field
  literality eval 'between(f, lo, hi)' --lit f=age --lit lo=1 --opaque hi
  literality eval 'concat(a, b)' --lit a=x --lit b=y --explain`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Literals, "lit", nil, "bind a leaf to a literal (name=value, repeatable)")
	cmd.Flags().StringArrayVar(&opts.Opaque, "opaque", nil, "bind a leaf to an opaque string (repeatable)")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "show the judgment of every node")

	return cmd
}

func runEval(opts *EvalOptions, expr string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := parseBindings(opts.Literals, opts.Opaque)
	if err != nil {
		_ = formatter.Error(ErrCodeBinding, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid binding", err)
	}

	node, err := notation.Parse(expr)
	if err != nil {
		var synErr *notation.SyntaxError
		var details any
		if errors.As(err, &synErr) {
			details = synErr
		}
		_ = formatter.Error(ErrCodeSyntax, err.Error(), details)
		return WrapExitError(ExitCommandError, "invalid expression", err)
	}

	if missing := unboundLeaves(node, env); len(missing) > 0 {
		msg := fmt.Sprintf("unbound leaves: %s (bind with --lit or --opaque)", strings.Join(missing, ", "))
		_ = formatter.Error(ErrCodeUnboundLeaf, msg, map[string][]string{"leaves": missing})
		return NewExitError(ExitCommandError, msg)
	}

	table, err := opts.Table()
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("Signature table: %d signatures (%s)", table.Len(), table.Fingerprint())

	evaluator := engine.New(table, engine.WithLogger(opts.Logger(formatter.GetErrWriter())))

	result := EvalResult{Expr: node.String()}
	if opts.Explain {
		exp, err := evaluator.Explain(node, env)
		if err != nil {
			return evalError(formatter, err)
		}
		result.Value = exp.Value
		result.Steps = exp.Steps
	} else {
		v, err := evaluator.Evaluate(node, env)
		if err != nil {
			return evalError(formatter, err)
		}
		result.Value = v
	}
	result.Type = ir.TypeString(result.Value)

	return formatter.Render(result, func(w io.Writer) {
		writeEvalText(w, result)
	})
}

func evalError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var details any
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		if re.Code == engine.ErrCodeUnboundLeaf {
			code = ErrCodeUnboundLeaf
		}
		details = map[string]string{"leaf": re.Leaf, "path": re.Path}
	}
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitCommandError, "evaluation failed", err)
}

func writeEvalText(w io.Writer, result EvalResult) {
	for _, s := range result.Steps {
		line := fmt.Sprintf("  %-8s %s => %s", s.Path, s.Expr, ir.TypeString(s.Value))
		if s.Signature != "" {
			line += " [" + s.Signature
			if s.Fallback {
				line += ", fallback"
			}
			line += "]"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, result.Type)
}

// unboundLeaves returns the sorted leaf names of n that env does not bind.
func unboundLeaves(n ir.Node, env ir.Env) []string {
	var missing []string
	for _, name := range ir.LeafNames(n) {
		if _, ok := env.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// parseBindings builds an environment from --lit name=value and --opaque
// name flags. A name may be bound once.
func parseBindings(literals, opaque []string) (ir.Env, error) {
	env := make(ir.Env, len(literals)+len(opaque))

	bind := func(name string, v ir.Value) error {
		if !notation.IsIdent(name) {
			return fmt.Errorf("invalid leaf name %q", name)
		}
		if _, dup := env[name]; dup {
			return fmt.Errorf("leaf %q is bound more than once", name)
		}
		env[name] = v
		return nil
	}

	for _, b := range literals {
		name, value, ok := strings.Cut(b, "=")
		if !ok {
			return nil, fmt.Errorf("--lit %q: expected name=value", b)
		}
		if err := bind(name, ir.NewLiteral(value)); err != nil {
			return nil, err
		}
	}
	for _, name := range opaque {
		if err := bind(name, ir.Opaque{}); err != nil {
			return nil, err
		}
	}
	return env, nil
}
