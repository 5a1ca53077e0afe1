package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

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

func TestContextHandler_TraceIDs(t *testing.T) {
	// given
	var buf bytes.Buffer
	l := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	// when
	l.InfoContext(ctx, "with span")

	// then
	record := decode(t, &buf)
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Equal(t, spanID.String(), record["span_id"])
	assert.NotContains(t, record, "request_id")
}

func TestContextHandler_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	l.Info("plain")

	record := decode(t, &buf)
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "request_id")
}

func TestComponent_KeepsContextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := Component(slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))), "store")

	_, ok := l.Handler().(*ContextHandler)
	require.True(t, ok, "WithAttrs should keep the ContextHandler wrapper")

	l.Info("tagged")
	assert.Equal(t, "store", decode(t, &buf)["component"])
}
