package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates dir/name with content, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const coalesceCUE = `package signatures

signature: {
	coalesce: {
		variadic: true
		min:      2
		join: {prefix: "COALESCE(", separator: ", ", suffix: ")"}
	}
	quoted: {
		arity:    1
		template: "'{0}'"
	}
}
`

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "literality", cmd.Use)
	assert.Contains(t, cmd.Long, "literal")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"eval", "test", "check", "signatures", "validate", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	sigFlag := cmd.PersistentFlags().Lookup("signatures")
	require.NotNil(t, sigFlag)
	assert.Equal(t, "", sigFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	for _, name := range []string{"update", "filter", "db"} {
		assert.NotNil(t, testCmd.Flags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "yaml", "signatures"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootOptionsTable(t *testing.T) {
	t.Run("builtins only", func(t *testing.T) {
		opts := &RootOptions{}
		table, err := opts.Table()
		require.NoError(t, err)
		assert.True(t, table.Has("between"))
		assert.False(t, table.Has("coalesce"))
	})

	t.Run("with signatures dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "coalesce.cue", coalesceCUE)

		opts := &RootOptions{Signatures: dir}
		table, err := opts.Table()
		require.NoError(t, err)
		assert.True(t, table.Has("coalesce"))
		assert.True(t, table.Has("quoted"))
		assert.True(t, table.Has("between"))
	})

	t.Run("conflict with builtin", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "dup.cue", `package signatures

signature: isNull: {arity: 1, template: "ISNULL({0})"}
`)
		opts := &RootOptions{Signatures: dir}
		_, err := opts.Table()
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "conflicts")
	})

	t.Run("missing dir", func(t *testing.T) {
		opts := &RootOptions{Signatures: filepath.Join(t.TempDir(), "nope")}
		_, err := opts.Table()
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestRootOptionsLogger(t *testing.T) {
	buf := &bytes.Buffer{}

	(&RootOptions{}).Logger(buf).Debug("hidden")
	assert.Empty(t, buf.String())

	(&RootOptions{Verbose: true}).Logger(buf).Debug("shown", "op", "between")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "op=between")
}
