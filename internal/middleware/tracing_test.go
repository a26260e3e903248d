package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

func newRecordingTracer(t *testing.T) (*observability.Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := observability.NewTracerFromProvider(observability.TracerConfig{ServiceName: "userapi"}, provider)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, recorder
}

func attributeOf(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestTracing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{name: "ok", status: http.StatusOK, wantStatus: codes.Unset},
		{name: "client error", status: http.StatusNotFound, wantStatus: codes.Unset},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracer, recorder := newRecordingTracer(t)

			var traceID, spanID string
			handler := func(ctx *router.Context) *router.Response {
				traceID = observability.TraceIDFromContext(ctx.Context())
				spanID = observability.SpanIDFromContext(ctx.Context())
				return router.JSON(tt.status, map[string]string{})
			}

			resp := run(newRequest(http.MethodGet, "/api/users"), handler, Tracing(tracer))
			require.Equal(t, tt.status, resp.Status)

			ended := recorder.Ended()
			require.Len(t, ended, 1)
			span := ended[0]
			assert.Equal(t, trace.SpanKindServer, span.SpanKind())
			assert.Equal(t, tt.wantStatus, span.Status().Code)
			assert.Equal(t, int64(tt.status), attributeOf(span, "http.response.status_code").AsInt64())
			assert.Equal(t, "GET", attributeOf(span, "http.request.method").AsString())
			assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
			assert.Equal(t, span.SpanContext().SpanID().String(), spanID)
		})
	}
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)

	req := newRequest(http.MethodGet, "/api/users/1")
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	var logged string
	handler := func(ctx *router.Context) *router.Response {
		logged = observability.TraceIDFromContext(ctx.Context())
		return okHandler(ctx)
	}
	run(req, handler, Tracing(tracer))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", ended[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", ended[0].Parent().SpanID().String())
	assert.True(t, ended[0].Parent().IsRemote())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", logged)
}

func TestTracing_DisabledTracer(t *testing.T) {
	t.Parallel()

	tracer, err := observability.NewTracer(observability.TracerConfig{ServiceName: "userapi"})
	require.NoError(t, err)

	resp := run(newRequest(http.MethodGet, "/"), okHandler, Tracing(tracer))
	assert.Equal(t, http.StatusOK, resp.Status)
}
