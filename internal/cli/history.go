package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string
	Suite string
	Run   string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded suite runs",
		Long: `List runs recorded by "literality test --db", oldest first.

With --run, show every case outcome of one run.

Examples:
  literality history --db runs.db
  literality history --db runs.db --suite expression_builder
  literality history --db runs.db --run 0192f4c8-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the run log database (required)")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only list runs of this suite")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the cases of one run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Don't create an empty database for a mistyped path
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run log", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if opts.Run != "" {
		run, err := st.ReadRun(ctx, opts.Run)
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.Run), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.Run))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		return formatter.Render(run, func(w io.Writer) {
			writeRunText(w, run)
		})
	}

	runs, err := st.ReadRuns(ctx, opts.Suite)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	return formatter.Render(runs, func(w io.Writer) {
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		for _, r := range runs {
			mark := "✓"
			if r.Failed > 0 {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s #%d %s %s (%d passed, %d failed)\n", mark, r.Seq, r.ID, r.Suite, r.Passed, r.Failed)
		}
	})
}

func writeRunText(w io.Writer, run store.RunRecord) {
	fmt.Fprintf(w, "Run #%d %s\n", run.Seq, run.ID)
	fmt.Fprintf(w, "Suite: %s\n", run.Suite)
	fmt.Fprintf(w, "Table: %s\n", run.TableFingerprint)
	fmt.Fprintf(w, "Version: %s\n\n", run.Version)
	for _, c := range run.Cases {
		if c.Pass {
			fmt.Fprintf(w, "✓ %s: %s => %s\n", c.Name, c.Expr, ir.TypeString(c.Actual))
			continue
		}
		if c.Error != "" {
			fmt.Fprintf(w, "✗ %s: %s: expected %s, error: %s\n", c.Name, c.Expr, ir.TypeString(c.Expected), c.Error)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %s: expected %s, got %s\n", c.Name, c.Expr, ir.TypeString(c.Expected), ir.TypeString(c.Actual))
	}
	fmt.Fprintf(w, "\n%d passed, %d failed\n", run.Passed, run.Failed)
}
