package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf, Service: "test"})
	t.Cleanup(func() { Init(Config{}) })

	ctx := WithRequestID(context.Background(), "req-42")
	LoggerFromContext(ctx).Info().Str("session_id", "s1").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "hello", entry["message"])
}

func TestLoggerFromContextWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	LoggerFromContext(context.Background()).Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["request_id"]
	assert.False(t, ok)
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Logger().Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	fieldLogger := WithFields("component", "poller")
	fieldLogger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), `"component":"poller"`)
}
