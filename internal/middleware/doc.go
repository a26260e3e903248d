// Package middleware provides the request filters of the users API.
//
// Filters implementing router.Middleware run inside the router's chain
// and see the matched route: Recovery, RequestID, Tracing, AccessLog, RateLimit,
// ContentType and Auth. SecurityHeaders and BodyLimit wrap the whole
// http.Handler so they also apply to routing errors.
package middleware
