package middleware

import (
	"net/http"
	"sort"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// header is one fixed response header.
type header struct {
	name  string
	value string
}

// SecurityHeaders returns an http.Handler wrapper that sets the given
// headers on every response, routing errors included. Entries with an
// empty value are skipped.
func SecurityHeaders(headers map[string]string) func(http.Handler) http.Handler {
	fixed := make([]header, 0, len(headers))
	for name, value := range headers {
		if value == "" {
			continue
		}
		fixed = append(fixed, header{name: http.CanonicalHeaderKey(name), value: value})
	}
	sort.Slice(fixed, func(i, j int) bool { return fixed[i].name < fixed[j].name })

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, f := range fixed {
				h.Set(f.name, f.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit returns an http.Handler wrapper capping request bodies at
// maxBytes. A declared Content-Length over the cap is answered with 413
// straight away; otherwise the body is wrapped so that reading past the
// cap fails with *http.MaxBytesError. A cap of zero disables the check.
func BodyLimit(maxBytes int64, logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				logger.Warn("request body too large",
					observability.Int64("content_length", r.ContentLength),
					observability.Int64("max_size", maxBytes),
					observability.String("path", r.URL.Path),
				)
				getMiddlewareMetrics().bodyLimitRejected.Inc()

				resp := router.ErrorResponse(http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
				if err := resp.Write(w); err != nil {
					logger.Debug("failed to write response", observability.Error(err))
				}
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
