package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vyrodovalexey/userapi/internal/observability"
)

// Error messages used by the router itself.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgEndpointNotFound = "Endpoint not found"
	MsgServerError      = "Server error"
)

// ErrNilHandler is returned when a route is registered without a handler.
var ErrNilHandler = errors.New("route handler is nil")

// route is one registration.
type route struct {
	method      string
	matcher     *Matcher
	handler     HandlerFunc
	middlewares []Middleware
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method      string
	Pattern     string
	Middlewares int
}

// Router owns the route table. Registration is expected at startup;
// the table is read-only while serving.
type Router struct {
	mu      sync.RWMutex
	routes  map[string][]*route
	methods []string
	global  []Middleware
	logger  observability.Logger
	metrics *routerMetrics
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates an empty router.
func New(opts ...Option) *Router {
	r := &Router{
		routes:  make(map[string][]*route),
		logger:  observability.NopLogger(),
		metrics: getRouterMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends global middlewares. They run before route middlewares,
// in the order added.
func (r *Router) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = append(r.global, middlewares...)
}

// Handle registers handler for method and pattern. Registering the same
// method and pattern again, compared case-insensitively as matching is,
// replaces the earlier route in place and keeps its match priority.
func (r *Router) Handle(method, pattern string, handler HandlerFunc, middlewares ...Middleware) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return fmt.Errorf("register %q: method is empty", pattern)
	}
	if handler == nil {
		return fmt.Errorf("register %s %s: %w", method, pattern, ErrNilHandler)
	}

	matcher, err := CompilePattern(pattern)
	if err != nil {
		return fmt.Errorf("register %s %s: %w", method, pattern, err)
	}

	rt := &route{
		method:      method,
		matcher:     matcher,
		handler:     handler,
		middlewares: append([]Middleware(nil), middlewares...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.routes[method] {
		if strings.EqualFold(existing.matcher.Pattern(), matcher.Pattern()) {
			r.routes[method][i] = rt
			r.logger.Debug("route replaced",
				observability.String("method", method),
				observability.String("pattern", pattern),
			)
			return nil
		}
	}
	if _, ok := r.routes[method]; !ok {
		r.methods = append(r.methods, method)
	}
	r.routes[method] = append(r.routes[method], rt)
	return nil
}

// GET registers a GET route.
func (r *Router) GET(pattern string, handler HandlerFunc, middlewares ...Middleware) error {
	return r.Handle(http.MethodGet, pattern, handler, middlewares...)
}

// POST registers a POST route.
func (r *Router) POST(pattern string, handler HandlerFunc, middlewares ...Middleware) error {
	return r.Handle(http.MethodPost, pattern, handler, middlewares...)
}

// PUT registers a PUT route.
func (r *Router) PUT(pattern string, handler HandlerFunc, middlewares ...Middleware) error {
	return r.Handle(http.MethodPut, pattern, handler, middlewares...)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(pattern string, handler HandlerFunc, middlewares ...Middleware) error {
	return r.Handle(http.MethodDelete, pattern, handler, middlewares...)
}

// Routes lists registered routes grouped by method, methods in the
// order they were first registered and routes in priority order.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []RouteInfo
	for _, method := range r.methods {
		for _, rt := range r.routes[method] {
			out = append(out, RouteInfo{
				Method:      method,
				Pattern:     rt.matcher.Pattern(),
				Middlewares: len(rt.middlewares),
			})
		}
	}
	return out
}

// Dispatch routes req and runs its chain. It always returns a response.
func (r *Router) Dispatch(req *http.Request) *Response {
	start := time.Now()

	rt, params, miss := r.match(req)
	if miss != nil {
		r.metrics.observe(req.Method, unmatchedRoute, miss.Status, time.Since(start).Seconds())
		return miss
	}

	ctx := NewContext(req)
	ctx.route = rt.matcher.Pattern()
	ctx.params = params

	resp := NewChain(r.middlewaresFor(rt), rt.handler).Proceed(ctx)
	if resp == nil {
		r.logger.Error("handler returned no response",
			observability.String("method", rt.method),
			observability.String("route", ctx.route),
		)
		resp = ErrorResponse(http.StatusInternalServerError, MsgServerError)
	}

	r.metrics.observe(req.Method, ctx.route, resp.Status, time.Since(start).Seconds())
	return resp
}

// match finds the first route for the request, or the error response
// to send when there is none.
func (r *Router) match(req *http.Request) (*route, []Param, *Response) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes, ok := r.routes[req.Method]
	if !ok || len(routes) == 0 {
		return nil, nil, ErrorResponse(http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	}

	for _, rt := range routes {
		if params, ok := rt.matcher.Match(req.URL.Path); ok {
			return rt, params, nil
		}
	}
	return nil, nil, ErrorResponse(http.StatusNotFound, MsgEndpointNotFound)
}

func (r *Router) middlewaresFor(rt *route) []Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Middleware, 0, len(r.global)+len(rt.middlewares))
	out = append(out, r.global...)
	return append(out, rt.middlewares...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp := r.Dispatch(req)
	if err := resp.Write(w); err != nil {
		r.logger.Error("failed to write response",
			observability.String("method", req.Method),
			observability.String("path", req.URL.Path),
			observability.Error(err),
		)
	}
}
