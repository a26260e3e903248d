package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/userapi/internal/auth"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// Auth returns a middleware that requires a valid bearer token and
// attaches its claims as the request identity.
func Auth(verifier auth.Verifier, logger observability.Logger) router.Middleware {
	return router.MiddlewareFunc(func(ctx *router.Context, next *router.Chain) *router.Response {
		token, ok := bearerToken(ctx.Header(HeaderAuthorization))
		if !ok {
			getMiddlewareMetrics().reject("auth", "401")
			return router.ErrorResponse(http.StatusUnauthorized, MsgTokenNotProvided)
		}

		claims, err := verifier.Verify(ctx.Context(), token)
		if err != nil {
			logger.WithContext(ctx.Context()).Debug("token rejected",
				observability.String("route", ctx.Route()),
				observability.Error(err),
			)
			getMiddlewareMetrics().reject("auth", "401")
			return router.ErrorResponse(http.StatusUnauthorized, rejectionMessage(err))
		}

		ctx.SetIdentity(claims)
		return next.Proceed(ctx)
	})
}

// bearerToken parses "Bearer <token>". The header must hold exactly two
// space separated parts.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return MsgTokenExpired
	case errors.Is(err, auth.ErrTokenInvalidSignature):
		return MsgTokenInvalid
	default:
		return MsgAuthenticationFailed
	}
}
