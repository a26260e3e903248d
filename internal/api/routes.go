package api

import (
	"errors"

	"github.com/vyrodovalexey/userapi/internal/router"
)

// Route patterns.
const (
	PathHealth = "/health"
	PathToken  = "/api/token"
	PathUsers  = "/api/users"
	PathUser   = "/api/users/{id}"
)

// ErrNoAuthenticator is returned by Register without an authentication
// middleware.
var ErrNoAuthenticator = errors.New("authentication middleware is required")

// Register adds the API routes to r. Reading and changing users needs
// authn; signing up and requesting a token do not.
func Register(r *router.Router, h *Handlers, health router.HandlerFunc, authn router.Middleware) error {
	if authn == nil {
		return ErrNoAuthenticator
	}

	return errors.Join(
		r.GET(PathHealth, health),
		r.POST(PathToken, h.IssueToken),
		r.GET(PathUsers, h.ListUsers, authn),
		r.POST(PathUsers, h.CreateUser),
		r.GET(PathUser, h.GetUser, authn),
		r.PUT(PathUser, h.UpdateUser, authn),
		r.DELETE(PathUser, h.DeleteUser, authn),
	)
}
