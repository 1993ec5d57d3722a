package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"fooddelivery/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func spanContext(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func TestContextHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo)
	ctx, sc := spanContext(t)

	logger.InfoContext(ctx, "claimed")

	record := decode(t, &buf)
	assert.Equal(t, sc.TraceID().String(), record["trace_id"])
	assert.Equal(t, sc.SpanID().String(), record["span_id"])
}

func TestContextHandler_WithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, slog.LevelInfo).InfoContext(context.Background(), "claimed")

	record := decode(t, &buf)
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "span_id")
}

func TestContextHandler_KeepsDecorationAfterWith(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo).With("component", "claims").WithGroup("req")
	ctx, sc := spanContext(t)

	logger.InfoContext(ctx, "claimed", "order_id", "o-1")

	record := decode(t, &buf)
	assert.Equal(t, "claims", record["component"])
	group, ok := record["req"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "o-1", group["order_id"])
	assert.Equal(t, sc.TraceID().String(), group["trace_id"])
}

func TestContextHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, slog.LevelWarn).Info("dropped")

	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, logging.ParseLevel(in))
		})
	}
}
