// Package router dispatches HTTP requests to handlers through an
// ordered middleware chain.
//
// Routes are registered per method with a path pattern made of literal
// text and named placeholders. Routes for a method are tried in
// registration order and the first structural match wins; there is no
// specificity scoring.
//
// # Features
//
//   - Placeholder capture with {name}, one path segment per placeholder
//   - Case-insensitive literal matching
//   - Global and per-route middleware composed into a Chain per request
//   - Structured JSON error responses for 404 and 405
//   - Prometheus request counters and dispatch latency
//
// # Usage
//
//	r := router.New(router.WithLogger(logger))
//	r.Use(middleware.Recovery(logger), middleware.RequestID())
//
//	err := r.GET("/api/users/{id}", func(c *router.Context) *router.Response {
//	    return router.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	}, authMiddleware)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.ListenAndServe(":8080", r)
//
// Dispatch never returns an error: every outcome, including "no route",
// is a *Response.
package router
