package api

import (
	"errors"
	"net/http"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
	"github.com/vyrodovalexey/userapi/internal/user"
)

// Response messages.
const (
	MsgInvalidUserID      = "Invalid userid"
	MsgInvalidFormat      = "Invalid format (only json)"
	MsgNoFields           = "No fields provided"
	MsgValidationFailed   = "Validation failed"
	MsgUserNotFound       = "User not found"
	MsgUserNotDeleted     = "User not found or already deleted"
	MsgServerError        = "Server error"
	MsgInvalidCredentials = "Invalid credentials"
	MsgBodyTooLarge       = "Request body too large"
)

// errorResponse maps a service error to its HTTP response. Unexpected
// errors are logged and answered with a generic 500.
func (h *Handlers) errorResponse(ctx *router.Context, err error, op string) *router.Response {
	var verr *user.ValidationError
	switch {
	case errors.As(err, &verr):
		return router.ValidationErrorResponse(http.StatusUnprocessableEntity, MsgValidationFailed, verr.Fields)
	case errors.Is(err, user.ErrNotFound):
		return router.ErrorResponse(http.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, user.ErrInvalidCredentials):
		return router.ErrorResponse(http.StatusUnauthorized, MsgInvalidCredentials)
	}

	h.logger.WithContext(ctx.Context()).Error("request failed",
		observability.String("op", op),
		observability.String("route", ctx.Route()),
		observability.Error(err),
	)
	return router.ErrorResponse(http.StatusInternalServerError, MsgServerError)
}
