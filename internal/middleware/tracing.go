package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// Tracing returns a middleware that wraps each request in a server span.
// An incoming W3C traceparent header becomes the span's parent. The
// request context carries the span, so repository and cache spans nest
// under it and WithContext loggers tag lines with its IDs.
func Tracing(tracer *observability.Tracer) router.Middleware {
	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)

	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) *router.Response {
		parent := propagator.Extract(ctx.Context(), propagation.HeaderCarrier(ctx.Request.Header))

		spanCtx, span := tracer.StartSpan(parent, ctx.Request.Method+" "+ctx.Route(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", ctx.Request.Method),
				attribute.String("http.route", ctx.Route()),
				attribute.String("url.path", ctx.Request.URL.Path),
			),
		)
		defer span.End()

		ctx.SetContext(spanCtx)
		resp := next.Proceed(ctx)
		if resp == nil {
			return nil
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
		if resp.Status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(resp.Status))
		}
		return resp
	})
}
