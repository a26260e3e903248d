package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/vyrodovalexey/userapi/internal/router"
)

// decodeObject reads the request body as a JSON object. It returns the
// response to send instead when the body is unusable.
func decodeObject(ctx *router.Context) (map[string]any, *router.Response) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, router.ErrorResponse(http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
		}
		return nil, router.ErrorResponse(http.StatusUnprocessableEntity, MsgInvalidFormat)
	}

	var input map[string]any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, router.ErrorResponse(http.StatusUnprocessableEntity, MsgInvalidFormat)
	}
	if len(input) == 0 {
		// covers both {} and null
		return nil, router.ErrorResponse(http.StatusBadRequest, MsgNoFields)
	}
	return input, nil
}

// userID parses the {id} placeholder, which must be a positive integer.
func userID(ctx *router.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
