// Package api exposes the user service over HTTP: the handlers for
// /api/users and /api/token and the route table tying them to the
// router and its middlewares.
package api
