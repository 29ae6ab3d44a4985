package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "entry=%s", buf.String())
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithOrderID(ctx, 42)
	log.Error(ctx, "fulfillment.failed", errors.New("supplier offline"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.EqualValues(t, 42, entry["order_id"])
	assert.Equal(t, "supplier offline", entry["error"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerRedactsSensitiveFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf, RedactKeys: []string{"Store_URL"}})

	ctx := log.WithFields(context.Background(), map[string]any{
		"api_key":   "sk_live_123",
		"platform":  "shopify",
		"store_url": "https://secret.myshopify.com",
	})
	ctx = log.WithField(ctx, "Password", "hunter2")
	log.Info(ctx, "integrations.connect")

	entry := decodeLine(t, buf)
	assert.Equal(t, redacted, entry["api_key"])
	assert.Equal(t, redacted, entry["store_url"])
	assert.Equal(t, redacted, entry["Password"])
	assert.Equal(t, "shopify", entry["platform"])
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf})
	log.WarnErr(context.Background(), "chatbot.escalation_notify_failed", errors.New("kv down"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "kv down", entry["error"])
	assert.NotContains(t, entry, "stack")

	buf.Reset()
	log = New(Options{Output: buf, WarnStack: true})
	log.Warn(context.Background(), "loud")
	assert.Contains(t, decodeLine(t, buf), "stack")
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf})
	log.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	log = New(Options{Output: buf, Level: zerolog.DebugLevel})
	ctx := log.WithSessionID(context.Background(), "sess-1")
	log.Debug(ctx, "visible")
	entry := decodeLine(t, buf)
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNopAndNilContext(t *testing.T) {
	log := Nop()
	ctx := log.WithJob(nil, "trend_refresh")
	require.NotNil(t, ctx)
	log.Error(ctx, "discarded", errors.New("x"))
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
}
