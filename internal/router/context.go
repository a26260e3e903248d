package router

import (
	"context"
	"net/http"
)

// Identity is the authenticated principal attached to a request.
type Identity interface {
	Subject() string
}

// Param is one captured placeholder value.
type Param struct {
	Name  string
	Value string
}

// Context carries one in-flight request through the middleware chain.
// It is owned by a single dispatch and must not be shared.
type Context struct {
	Request *http.Request

	route    string
	params   []Param
	identity Identity
}

// NewContext creates a Context for req.
func NewContext(req *http.Request) *Context {
	return &Context{Request: req}
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// SetContext replaces the request's context.Context.
func (c *Context) SetContext(ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}

// Param returns the value captured for name, or "" if the matched
// pattern has no such placeholder.
func (c *Context) Param(name string) string {
	for _, p := range c.params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Params returns the captured placeholders in pattern order.
func (c *Context) Params() []Param {
	out := make([]Param, len(c.params))
	copy(out, c.params)
	return out
}

// Route returns the pattern of the matched route.
func (c *Context) Route() string {
	return c.route
}

// Identity returns the authenticated principal, or nil.
func (c *Context) Identity() Identity {
	return c.identity
}

// SetIdentity attaches the authenticated principal.
func (c *Context) SetIdentity(id Identity) {
	c.identity = id
}

// Header returns the first value of the named request header.
func (c *Context) Header(name string) string {
	return c.Request.Header.Get(name)
}
