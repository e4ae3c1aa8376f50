package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]string {
	out := make(map[string]string, len(entry.Context))
	for _, f := range entry.Context {
		out[f.Key] = f.String
	}
	return out
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	FromContext(ctx).Info("hello")
	assert.Equal(t, 1, recorded.Len())

	wrong := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrong))
}

func TestCorrelationValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetSyncRunID(ctx))
	assert.Empty(t, GetAccountID(ctx))
	assert.Empty(t, GetExternalOrderID(ctx))

	ctx = WithSyncRunID(ctx, "run-1")
	ctx = WithAccountID(ctx, "acc-9")
	ctx = WithExternalOrderID(ctx, "2000001")

	assert.Equal(t, "run-1", GetSyncRunID(ctx))
	assert.Equal(t, "acc-9", GetAccountID(ctx))
	assert.Equal(t, "2000001", GetExternalOrderID(ctx))
}

func TestTraceIDs(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	ctx := spanContext(t)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
	assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
}

func TestContextLogger_EnrichesEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(spanContext(t), zap.New(core))
	ctx = WithSyncRunID(ctx, "run-7")
	ctx = WithAccountID(ctx, "acc-1")
	ctx = WithExternalOrderID(ctx, "42")

	L(ctx).With(zap.String("component", "resolver")).Warn("unrecognized shipment status")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := fieldMap(entries[0])
	assert.Equal(t, "run-7", fields["sync_run_id"])
	assert.Equal(t, "acc-1", fields["account_id"])
	assert.Equal(t, "42", fields["external_order_id"])
	assert.Equal(t, "resolver", fields["component"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestContextLogger_EmptyContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	cl := WithLogger(context.Background(), zap.New(core))
	cl.Debug("d")
	cl.Info("i")
	cl.Error("e")
	cl.Zap().Info("z")

	require.Equal(t, 4, recorded.Len())
	for _, e := range recorded.All() {
		assert.Empty(t, e.Context)
	}
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("ignored")
		cl.With(zap.Int("n", 1)).Warn("ignored")
	})
}
