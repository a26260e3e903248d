package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/userapi/internal/router"
)

// subject is a minimal router.Identity.
type subject string

func (s subject) Subject() string { return string(s) }

func run(req *http.Request, handler router.HandlerFunc, mws ...router.Middleware) *router.Response {
	return router.NewChain(mws, handler).Proceed(router.NewContext(req))
}

func okHandler(*router.Context) *router.Response {
	return router.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errorOf extracts the error envelope of a middleware rejection.
func errorOf(t *testing.T, resp *router.Response) router.ErrorDetail {
	t.Helper()

	require.NotNil(t, resp)
	body, ok := resp.Body.(router.ErrorBody)
	require.True(t, ok, "body is %T", resp.Body)
	require.Equal(t, resp.Status, body.Error.Code)
	return body.Error
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
