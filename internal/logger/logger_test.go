package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info().Str("username", "alice").Msg("registered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "registered", entry["message"])
	assert.Equal(t, "alice", entry["username"])
	assert.Contains(t, entry, "time")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(NewWithWriter(&buf), "ledger")

	l.Warn().Msg("drift")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["component"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), l)
	lg := FromContext(ctx)
	lg.Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContextWithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	// A disabled logger must not panic.
	l.Info().Msg("dropped")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := WithFields(NewWithWriter(&buf), map[string]any{
		"request_id": "req-1",
		"attempt":    2,
	})

	l.Info().Msg("with fields")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, float64(2), entry["attempt"])
}
