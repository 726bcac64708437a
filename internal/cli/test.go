package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/literality/internal/harness"
	"github.com/roach88/literality/internal/signature"
	"github.com/roach88/literality/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // suite filter (glob pattern)
	DB     string // run log database path (optional)
}

// SuiteResult holds the result of a single suite execution.
type SuiteResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Code   string   `json:"code,omitempty"` // E301, or E007 when the run log write failed
	Passed int      `json:"passed"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suites-dir>",
		Short: "Run fixture suites",
		Long: `Run every fixture suite (*.yaml) in a directory.

Each case's judgment is compared with its expectation; every mismatch is
reported. When <suites-dir>/golden/<suite>.golden exists, the run's
snapshot must also match it byte for byte.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, etc.)

Examples:
  literality test ./suites
  literality test ./suites --filter "expression_*"
  literality test ./suites --update
  literality test ./suites --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in this SQLite database")

	return cmd
}

func runTests(opts *TestOptions, suitesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if info, err := os.Stat(suitesDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("suites directory not found: %s", suitesDir))
	}

	suiteFiles, err := findSuiteFiles(suitesDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find suites", err)
	}

	if len(suiteFiles) == 0 {
		return formatter.Render(TestResult{Suites: []SuiteResult{}}, func(w io.Writer) {
			fmt.Fprintln(w, "No suites found.")
		})
	}

	table, err := opts.Table()
	if err != nil {
		return err
	}

	var runLog *store.Store
	if opts.DB != "" {
		runLog, err = store.Open(opts.DB)
		if err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), map[string]string{"db": opts.DB})
			return WrapExitError(ExitCommandError, "failed to open run log", err)
		}
		defer runLog.Close()
	}

	logger := opts.Logger(formatter.GetErrWriter())
	result := TestResult{
		Suites: make([]SuiteResult, 0, len(suiteFiles)),
		Total:  len(suiteFiles),
	}

	for _, file := range suiteFiles {
		sr := runSuiteFile(cmd.Context(), file, table, runLog, opts, harness.WithLogger(logger))
		result.Suites = append(result.Suites, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	var failure *CLIError
	if result.Failed > 0 {
		failure = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d of %d suite(s) failed", result.Failed, result.Total),
		}
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if failure != nil {
			resp.Status = "error"
			resp.Error = failure
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
	} else {
		writeTestText(cmd.OutOrStdout(), result)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

// findSuiteFiles finds all YAML suite files in a directory tree.
func findSuiteFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runSuiteFile loads, runs, snapshots, and optionally records one suite.
// Failures are reported in the returned SuiteResult.
func runSuiteFile(ctx context.Context, file string, table *signature.Table, runLog *store.Store, opts *TestOptions, hopts ...harness.Option) SuiteResult {
	sr := suiteOutcome(ctx, file, table, runLog, opts, hopts...)
	if !sr.Pass && sr.Code == "" {
		sr.Code = ErrCodeTestFailed
	}
	return sr
}

func suiteOutcome(ctx context.Context, file string, table *signature.Table, runLog *store.Store, opts *TestOptions, hopts ...harness.Option) SuiteResult {
	sr := SuiteResult{Name: filepath.Base(file), File: file}

	suite, err := harness.LoadSuite(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr
	}
	sr.Name = suite.Name

	result, err := harness.Run(suite, table, hopts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr
	}
	sr.RunID = result.RunID
	sr.Pass = result.Pass
	sr.Passed = result.Passed()
	sr.Failed = result.Failed()
	sr.Errors = append(sr.Errors, result.Errors...)

	if err := checkGolden(file, result, opts.Update); err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, err.Error())
	}

	if runLog != nil {
		rec, err := result.Record()
		if err == nil {
			_, err = runLog.WriteRun(ctx, rec)
		}
		if err != nil {
			sr.Pass = false
			sr.Code = ErrCodeWriteFailed
			sr.Errors = append(sr.Errors, fmt.Sprintf("record run: %v", err))
		}
	}

	return sr
}

// goldenFilePath returns the path to the golden file for a suite file.
func goldenFilePath(suiteFile string) string {
	dir := filepath.Dir(suiteFile)
	base := filepath.Base(suiteFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// checkGolden writes the snapshot when update is set, otherwise compares it
// with an existing golden file. A missing golden file is not an error.
func checkGolden(suiteFile string, result *harness.Result, update bool) error {
	snapshot, err := harness.Snapshot(result)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	goldenPath := goldenFilePath(suiteFile)
	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(goldenPath, snapshot, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(golden, snapshot) {
		return fmt.Errorf("golden file mismatch (run with --update to regenerate)")
	}
	return nil
}

func writeTestText(w io.Writer, result TestResult) {
	for _, s := range result.Suites {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s (%d cases)\n", s.Name, s.Passed)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%d passed, %d failed) [%s]\n", s.Name, s.Passed, s.Failed, s.Code)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
