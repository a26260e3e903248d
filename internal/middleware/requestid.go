package middleware

import (
	"github.com/google/uuid"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// maxRequestIDLength bounds an incoming X-Request-ID before it is
// trusted and echoed back.
const maxRequestIDLength = 128

// RequestID returns a middleware that tags each request with an id. An
// incoming X-Request-ID is kept, otherwise a UUID is generated. The id
// is stored in the request context and echoed in the response.
func RequestID() router.Middleware {
	return RequestIDWithGenerator(func() string { return uuid.New().String() })
}

// RequestIDWithGenerator returns a RequestID middleware using generator
// for new ids.
func RequestIDWithGenerator(generator func() string) router.Middleware {
	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) *router.Response {
		requestID := ctx.Header(HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = generator()
		}

		ctx.SetContext(observability.ContextWithRequestID(ctx.Context(), requestID))

		resp := next.Proceed(ctx)
		if resp == nil {
			return nil
		}
		return resp.WithHeader(HeaderXRequestID, requestID)
	})
}
