package boundary

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	state := map[string]any{
		"tasks": []any{map[string]any{"id": "1", "name": "Alice"}},
		"count": float64(3),
	}

	raw, err := codec.Serialize(state)
	require.NoError(t, err)

	got, err := codec.Deserialize(raw)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestJSONCodecSerializeRejectsUnsupportedValues(t *testing.T) {
	codec := JSONCodec{}

	_, err := codec.Serialize(map[string]any{"fn": func() {}})
	require.Error(t, err)
}

func TestDeserializeOrFallsBackOnMalformedInput(t *testing.T) {
	fallback := map[string]any{"count": 0}

	got := DeserializeOr(JSONCodec{}, []byte("{not json"), fallback, quietLogger())
	assert.Equal(t, fallback, got)
}

func TestDeserializeOrDecodesValidInput(t *testing.T) {
	got := DeserializeOr(nil, []byte(`{"count":7}`), nil, nil)
	assert.Equal(t, map[string]any{"count": float64(7)}, got)
}

func TestStashRestoreConsumesValue(t *testing.T) {
	s := NewStash()
	s.Save("app", map[string]any{"count": 1})

	got, ok := s.Restore("app")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"count": 1}, got)

	_, ok = s.Restore("app")
	assert.False(t, ok, "a saved value is valid exactly once")
}

func TestStashSaveReplacesPreviousValue(t *testing.T) {
	s := NewStash()
	s.Save("app", "old")
	s.Save("app", "new")

	got, ok := s.Restore("app")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Zero(t, s.Len())
}

func TestStashRestoreOr(t *testing.T) {
	s := NewStash()

	assert.Equal(t, "fresh", s.RestoreOr("missing", "fresh"))

	s.Save("app", "kept")
	assert.Equal(t, "kept", s.RestoreOr("app", "fresh"))
}

func TestDefaultStashIsProcessWideAndResets(t *testing.T) {
	t.Cleanup(Reset)

	Default().Save("app", "v")
	got, ok := Default().Restore("app")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	Default().Save("app", "again")
	Reset()
	_, ok = Default().Restore("app")
	assert.False(t, ok)
}
