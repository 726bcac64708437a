package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/ir"
	"github.com/roach88/literality/internal/signature"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Signatures string // directory of extra CUE signature files
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the literality CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "literality",
		Short:   "literality - string literality analysis",
		Long:    "Decide whether a string-building expression yields a value known at analysis time (a literal) or only its type.",
		Version: ir.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Signatures, "signatures", "", "directory of CUE signature files added to the built-in table")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSignaturesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Logger returns the diagnostic logger for a command.
// Verbose mode logs at debug level to w; otherwise logs are discarded.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Table builds the effective signature table: the built-in signatures plus
// those loaded from the --signatures directory, if set.
// Load and registration errors are returned as command errors.
func (o *RootOptions) Table() (*signature.Table, error) {
	b := signature.NewDefaultBuilder()

	if o.Signatures != "" {
		loaded, errs := LoadSignatures(o.Signatures, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, WrapExitError(ExitCommandError, "failed to load signatures", errs[0])
		}
		if err := b.RegisterAll(loaded.Signatures...); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to register signatures", err)
		}
	}

	table, err := b.Build()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build signature table", err)
	}
	return table, nil
}
