package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenCUE = `package signatures

signature: {
	good: {arity: 1, template: "GOOD({0})"}
	noRule: {arity: 1}
	typo: {arity: 1, templat: "{0}"}
}
`

func TestLoadSignatures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coalesce.cue", coalesceCUE)

	result, errs := LoadSignatures(dir, LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Signatures, 2)

	names := []string{result.Signatures[0].Name, result.Signatures[1].Name}
	assert.ElementsMatch(t, []string{"coalesce", "quoted"}, names)
}

func TestLoadSignatures_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			setup:    func(t *testing.T) string { return "/nonexistent/signatures" },
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "empty directory",
			setup:    func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
		},
		{
			name: "not a directory",
			setup: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "file.cue", coalesceCUE)
			},
			wantCode: ErrCodeNotFound,
		},
		{
			name: "no signature struct",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "other.cue", "package signatures\n\nother: 1\n")
				return dir
			},
			wantCode: ErrCodeGeneric,
		},
		{
			name: "template placeholder out of range",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "bad.cue", "package signatures\n\nsignature: wrap: {arity: 1, template: \"{0} {1}\"}\n")
				return dir
			},
			wantCode: ErrCodeTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := LoadSignatures(tt.setup(t), LoadModeFailFast)
			require.Len(t, errs, 1)

			var loadErr *LoadError
			require.True(t, errors.As(errs[0], &loadErr))
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestLoadSignatures_Modes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.cue", brokenCUE)

	_, errs := LoadSignatures(dir, LoadModeFailFast)
	assert.Len(t, errs, 1)

	result, errs := LoadSignatures(dir, LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, errs, 2)
	require.Len(t, result.Signatures, 1)
	assert.Equal(t, "good", result.Signatures[0].Name)

	codes := make([]string, len(errs))
	for i, err := range errs {
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		codes[i] = loadErr.Code
	}
	assert.ElementsMatch(t, []string{ErrCodeRule, ErrCodeUnknownField}, codes)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"arity":          ErrCodeArity,
		"min":            ErrCodeArity,
		"rule":           ErrCodeRule,
		"wrapper":        ErrCodeRule,
		"template":       ErrCodeTemplate,
		"join.separator": ErrCodeJoin,
		"join.glue":      ErrCodeJoin,
		"templat":        ErrCodeUnknownField,
		"signature":      ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
}
