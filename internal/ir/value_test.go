package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Literal("field"), Literal("field")))
	assert.True(t, Equal(Literal(""), Literal("")))
	assert.False(t, Equal(Literal("field"), Literal("other")))
	assert.False(t, Equal(Literal("field"), Opaque{}))
	assert.False(t, Equal(Opaque{}, Literal("field")))

	// Opaque denotes "any string" and never equals anything, itself included
	assert.False(t, Equal(Opaque{}, Opaque{}))
}

func TestSameJudgment(t *testing.T) {
	assert.True(t, SameJudgment(Opaque{}, Opaque{}))
	assert.True(t, SameJudgment(Literal("a"), Literal("a")))
	assert.False(t, SameJudgment(Literal("a"), Literal("b")))
	assert.False(t, SameJudgment(Opaque{}, Literal("a")))
	assert.False(t, SameJudgment(Literal("a"), Opaque{}))
}

func TestIsOpaqueNil(t *testing.T) {
	assert.True(t, IsOpaque(nil))
	assert.True(t, IsOpaque(Opaque{}))
	assert.False(t, IsOpaque(Literal("")))
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"opaque", Opaque{}, "string"},
		{"plain literal", Literal("field IS NULL"), "'field IS NULL'"},
		{"quoted literal", Literal("field BETWEEN 'value_1' AND 'value_2'"), `'field BETWEEN \'value_1\' AND \'value_2\''`},
		{"backslash", Literal(`a\b`), `'a\\b'`},
		{"empty", Literal(""), "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeString(tt.value))
		})
	}
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(Literal("COUNT(DISTINCT A, B, C)"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"literal":"COUNT(DISTINCT A, B, C)"}`, string(data))

	data, err = json.Marshal(Opaque{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"opaque":true}`, string(data))
}

func TestUnmarshalValue(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"literal":"field"}`))
	require.NoError(t, err)
	assert.Equal(t, Literal("field"), v)

	v, err = UnmarshalValue([]byte(`{"opaque":true}`))
	require.NoError(t, err)
	assert.Equal(t, Opaque{}, v)
}

func TestLiteralJSONPreservesBytes(t *testing.T) {
	for _, lit := range []Literal{
		"caf\u00e9",
		"cafe\u0301",
		"bad \xff byte",
	} {
		data, err := json.Marshal(lit)
		require.NoError(t, err)

		v, err := UnmarshalValue(data)
		require.NoError(t, err)
		assert.Equal(t, lit, v, "round trip of %q via %s", string(lit), data)
	}
}

func TestUnmarshalValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `"field"`},
		{"empty object", `{}`},
		{"both keys", `{"literal":"a","opaque":true}`},
		{"opaque false", `{"opaque":false}`},
		{"literal not string", `{"literal":3}`},
		{"unknown key", `{"value":"a"}`},
		{"bad hex", `{"literal_hex":"zz"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalValue([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}
