package router

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is what a handler or middleware produces. Body is encoded
// as JSON unless it is nil.
type Response struct {
	Status int
	Header http.Header
	Body   any
}

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error. Errors carries field-level messages
// for validation failures.
type ErrorDetail struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON creates a response with the given status and body.
func JSON(status int, body any) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// NoContent creates an empty 204 response.
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent, Header: make(http.Header)}
}

// ErrorResponse creates a {error:{code,message}} response whose HTTP
// status equals code.
func ErrorResponse(code int, message string) *Response {
	return JSON(code, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// ValidationErrorResponse creates an error response listing field errors.
func ValidationErrorResponse(code int, message string, fields map[string]string) *Response {
	return JSON(code, ErrorBody{Error: ErrorDetail{Code: code, Message: message, Errors: fields}})
}

// WithHeader sets a response header and returns r.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// Write sends the response to w. A body that cannot be encoded is
// replaced by a 500 error envelope and the encoding error is returned.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	if r.Body == nil || r.Status == http.StatusNoContent {
		w.WriteHeader(r.Status)
		return nil
	}

	payload, err := json.Marshal(r.Body)
	if err != nil {
		fallback := ErrorResponse(http.StatusInternalServerError, MsgServerError)
		if writeErr := writeJSON(w, fallback.Status, fallback.Body); writeErr != nil {
			return errors.Join(err, writeErr)
		}
		return err
	}
	return writePayload(w, r.Status, payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return writePayload(w, status, payload)
}

func writePayload(w http.ResponseWriter, status int, payload []byte) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(payload)
	return err
}
