package router

import "net/http"

// HandlerFunc is a terminal route handler.
type HandlerFunc func(*Context) *Response

// Middleware filters a request. It either returns its own response
// without calling next.Proceed, or calls next.Proceed exactly once and
// returns (possibly decorating) its result.
type Middleware interface {
	Process(ctx *Context, next *Chain) *Response
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx *Context, next *Chain) *Response

// Process implements Middleware.
func (f MiddlewareFunc) Process(ctx *Context, next *Chain) *Response {
	return f(ctx, next)
}

// Chain is a cursor over the middlewares of one request followed by the
// terminal handler. A Chain is used for exactly one request.
type Chain struct {
	middlewares []Middleware
	terminal    HandlerFunc
	pos         int
	done        bool
}

// NewChain creates a chain running middlewares in order, then terminal.
func NewChain(middlewares []Middleware, terminal HandlerFunc) *Chain {
	return &Chain{middlewares: middlewares, terminal: terminal}
}

// Proceed runs the next middleware, or the terminal handler once the
// middlewares are exhausted. The cursor advances before the middleware
// runs, so no unit ever runs twice. Calling Proceed after the terminal
// handler has run is a contract violation answered with a 500.
func (c *Chain) Proceed(ctx *Context) *Response {
	if c.done {
		return ErrorResponse(http.StatusInternalServerError, MsgServerError)
	}

	if c.pos < len(c.middlewares) {
		mw := c.middlewares[c.pos]
		c.pos++
		return mw.Process(ctx, c)
	}

	c.done = true
	return c.terminal(ctx)
}

// Position returns how many middlewares have been entered.
func (c *Chain) Position() int {
	return c.pos
}

// Done reports whether the terminal handler has run.
func (c *Chain) Done() bool {
	return c.done
}
