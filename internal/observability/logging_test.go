package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  LogConfig
		wantErr bool
	}{
		{name: "json stdout", config: LogConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "console format", config: LogConfig{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "stderr output", config: LogConfig{Level: "warn", Format: "json", Output: "stderr"}},
		{name: "empty level means info", config: LogConfig{Format: "json"}},
		{name: "invalid level", config: LogConfig{Level: "verbose", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestLogger_WithContext(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx, span := NewTracerFromProvider(TracerConfig{ServiceName: "test"}, provider).StartSpan(ctx, "op")
	defer span.End()

	logger.WithContext(ctx).Info("handled", Int("status", 200))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, int64(200), fields["status"])
}

func TestLogger_WithContext_NoFields(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestContextHelpers_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.Empty(t, SpanIDFromContext(ctx))
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(LogConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	zl := logger.(*zapLogger)
	child := logger.With(String("component", "test")).(*zapLogger)

	assert.False(t, zl.logger.Core().Enabled(zapcore.DebugLevel))

	setter, ok := logger.(LevelSetter)
	require.True(t, ok)
	require.NoError(t, setter.SetLevel("debug"))

	assert.True(t, zl.logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, child.logger.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, setter.SetLevel("loud"))
}
