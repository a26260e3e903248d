package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
	"github.com/vyrodovalexey/userapi/internal/user"
)

// tokenType is reported by the token endpoint.
const tokenType = "Bearer"

// UserService is the part of user.Service the handlers use.
type UserService interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, input map[string]any) (*user.User, error)
	Find(ctx context.Context, id int64) (*user.User, error)
	Update(ctx context.Context, id int64, input map[string]any) (*user.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(id int64, email string) (string, time.Time, error)
	TTL() time.Duration
}

// ListBody is the body of GET /api/users.
type ListBody struct {
	Count int         `json:"count"`
	Items []user.User `json:"items"`
}

// TokenBody is the body of POST /api/token.
type TokenBody struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// Handlers serves the user endpoints.
type Handlers struct {
	users  UserService
	tokens TokenIssuer
	logger observability.Logger
}

// NewHandlers creates the handlers.
func NewHandlers(users UserService, tokens TokenIssuer, logger observability.Logger) *Handlers {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Handlers{users: users, tokens: tokens, logger: logger}
}

// ListUsers handles GET /api/users.
func (h *Handlers) ListUsers(ctx *router.Context) *router.Response {
	users, err := h.users.List(ctx.Context())
	if err != nil {
		return h.errorResponse(ctx, err, "list")
	}
	return router.JSON(http.StatusOK, ListBody{Count: len(users), Items: users})
}

// CreateUser handles POST /api/users.
func (h *Handlers) CreateUser(ctx *router.Context) *router.Response {
	input, rejected := decodeObject(ctx)
	if rejected != nil {
		return rejected
	}

	created, err := h.users.Create(ctx.Context(), input)
	if err != nil {
		return h.errorResponse(ctx, err, "create")
	}

	return router.JSON(http.StatusCreated, created).
		WithHeader("Location", "/api/users/"+strconv.FormatInt(created.ID, 10))
}

// GetUser handles GET /api/users/{id}.
func (h *Handlers) GetUser(ctx *router.Context) *router.Response {
	id, ok := userID(ctx)
	if !ok {
		return router.ErrorResponse(http.StatusBadRequest, MsgInvalidUserID)
	}

	u, err := h.users.Find(ctx.Context(), id)
	if err != nil {
		return h.errorResponse(ctx, err, "find")
	}
	return router.JSON(http.StatusOK, u)
}

// UpdateUser handles PUT /api/users/{id}.
func (h *Handlers) UpdateUser(ctx *router.Context) *router.Response {
	id, ok := userID(ctx)
	if !ok {
		return router.ErrorResponse(http.StatusBadRequest, MsgInvalidUserID)
	}

	input, rejected := decodeObject(ctx)
	if rejected != nil {
		return rejected
	}

	updated, err := h.users.Update(ctx.Context(), id, input)
	if err != nil {
		return h.errorResponse(ctx, err, "update")
	}
	return router.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handlers) DeleteUser(ctx *router.Context) *router.Response {
	id, ok := userID(ctx)
	if !ok {
		return router.ErrorResponse(http.StatusBadRequest, MsgInvalidUserID)
	}

	deleted, err := h.users.Delete(ctx.Context(), id)
	if err != nil {
		return h.errorResponse(ctx, err, "delete")
	}
	if !deleted {
		return router.ErrorResponse(http.StatusNotFound, MsgUserNotDeleted)
	}
	return router.NoContent()
}

// IssueToken handles POST /api/token, exchanging an email and password
// for a bearer token.
func (h *Handlers) IssueToken(ctx *router.Context) *router.Response {
	input, rejected := decodeObject(ctx)
	if rejected != nil {
		return rejected
	}

	email, emailOK := input[user.FieldEmail].(string)
	password, passwordOK := input[user.FieldPassword].(string)
	fields := make(map[string]string)
	if !emailOK || email == "" {
		fields[user.FieldEmail] = "This field is required"
	}
	if !passwordOK || password == "" {
		fields[user.FieldPassword] = "This field is required"
	}
	if len(fields) > 0 {
		return router.ValidationErrorResponse(http.StatusUnprocessableEntity, MsgValidationFailed, fields)
	}

	u, err := h.users.Authenticate(ctx.Context(), email, password)
	if err != nil {
		return h.errorResponse(ctx, err, "authenticate")
	}

	token, _, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return h.errorResponse(ctx, err, "issue token")
	}

	h.logger.WithContext(ctx.Context()).Info("token issued", observability.Int64("user_id", u.ID))
	return router.JSON(http.StatusOK, TokenBody{
		Token:     token,
		TokenType: tokenType,
		ExpiresIn: int64(h.tokens.TTL() / time.Second),
	}).WithHeader("Cache-Control", "no-store")
}
