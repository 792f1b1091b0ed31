package canonjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsObjectKeys(t *testing.T) {
	got, err := Marshal(map[string]any{"b": 1, "a": 2, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(got))
}

func TestMarshalKeyOrderIsUTF16(t *testing.T) {
	// U+1D306 (non-BMP, surrogate pair starting 0xD834) sorts before
	// U+FF01 in UTF-16 code units, after it in UTF-8 bytes.
	got, err := Marshal(map[string]any{"\U0001D306": 1, "！": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001D306\":1,\"！\":2}", string(got))
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	got, err := Marshal(map[string]any{"k": "<a> & </a>"})
	require.NoError(t, err)
	assert.Equal(t, `{"k":"<a> & </a>"}`, string(got))
}

func TestMarshalNormalizesToNFC(t *testing.T) {
	// "e" followed by combining acute accent normalizes to U+00E9.
	decomposed := "é"
	got, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"é\"", string(got))
}

func TestMarshalNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"integral float drops fraction", 3.0, "3"},
		{"integer", 42, "42"},
		{"fraction kept", 1.5, "1.5"},
		{"negative", -7, "-7"},
		{"null allowed", nil, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalStructsViaTags(t *testing.T) {
	type task struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	got, err := Marshal(struct {
		Tasks []task `json:"tasks"`
	}{Tasks: []task{{ID: "1", Name: "Alice"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[{"id":"1","name":"Alice"}]}`, string(got))
}

func TestMarshalIsDeterministic(t *testing.T) {
	in := map[string]any{"z": []any{1, 2}, "a": map[string]any{"y": 1, "x": 2}}
	first, err := Marshal(in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalIndentKeepsOrder(t *testing.T) {
	got, err := MarshalIndent(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", string(got))
}

func TestMarshalRejectsUnsupportedValues(t *testing.T) {
	_, err := Marshal(map[string]any{"fn": func() {}})
	require.Error(t, err)
}
