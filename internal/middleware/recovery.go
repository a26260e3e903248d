package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// Recovery returns a middleware that turns a panic further down the
// chain into a 500 response.
func Recovery(logger observability.Logger) router.Middleware {
	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) (resp *router.Response) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(ctx.Context()).Error("panic recovered",
					observability.String("path", ctx.Request.URL.Path),
					observability.String("method", ctx.Request.Method),
					observability.String("route", ctx.Route()),
					observability.Any("error", err),
					observability.String("stack", string(debug.Stack())),
				)

				getMiddlewareMetrics().panicsRecovered.Inc()
				resp = router.ErrorResponse(http.StatusInternalServerError, MsgServerError)
			}
		}()

		return next.Proceed(ctx)
	})
}
