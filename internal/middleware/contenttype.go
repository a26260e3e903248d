package middleware

import (
	"net/http"
	"strings"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// ContentType returns a middleware requiring an accepted Content-Type on
// the configured methods. Other methods pass through untouched. Media
// type parameters such as charset are ignored.
func ContentType(cfg config.ContentTypeConfig) router.Middleware {
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodPost, http.MethodPut}
	}
	types := cfg.Types
	if len(types) == 0 {
		types = []string{"application/json"}
	}

	covered := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		covered[strings.ToUpper(m)] = struct{}{}
	}
	accepted := make(map[string]struct{}, len(types))
	for _, t := range types {
		accepted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) *router.Response {
		if _, ok := covered[ctx.Request.Method]; !ok {
			return next.Proceed(ctx)
		}

		mediaType := mediaTypeOf(ctx.Header(HeaderContentType))
		if mediaType == "" {
			getMiddlewareMetrics().reject("content_type", "400")
			return router.ErrorResponse(http.StatusBadRequest, MsgContentTypeRequired)
		}
		if _, ok := accepted[mediaType]; !ok {
			getMiddlewareMetrics().reject("content_type", "400")
			return router.ErrorResponse(http.StatusBadRequest, MsgContentTypeJSON)
		}

		return next.Proceed(ctx)
	})
}

// mediaTypeOf strips parameters from a Content-Type value and
// normalises it.
func mediaTypeOf(value string) string {
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = value[:i]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
