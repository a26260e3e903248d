package middleware

import (
	"time"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// AccessLog returns a middleware that logs every request once its
// response is known. Server errors log at error level, rejections at
// warn level.
func AccessLog(logger observability.Logger, extractor *ClientIPExtractor) router.Middleware {
	if extractor == nil {
		extractor = NewClientIPExtractor(nil)
	}

	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) *router.Response {
		start := time.Now()
		resp := next.Proceed(ctx)

		status := 0
		if resp != nil {
			status = resp.Status
		}

		fields := []observability.Field{
			observability.String("method", ctx.Request.Method),
			observability.String("path", ctx.Request.URL.Path),
			observability.String("route", ctx.Route()),
			observability.Int("status", status),
			observability.Duration("latency", time.Since(start)),
			observability.String("client_ip", extractor.Extract(ctx.Request)),
			observability.String("user_agent", ctx.Request.UserAgent()),
		}
		if id := ctx.Identity(); id != nil {
			fields = append(fields, observability.String("subject", id.Subject()))
		}

		log := logger.WithContext(ctx.Context())
		switch {
		case status >= 500:
			log.Error("access", fields...)
		case status >= 400:
			log.Warn("access", fields...)
		default:
			log.Info("access", fields...)
		}

		return resp
	})
}
