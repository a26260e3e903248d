// Package health reports whether the service and its dependencies are
// usable.
//
// A Checker runs its registered dependency checks concurrently, each
// under its own timeout. A failing critical dependency makes the
// service unhealthy (503); a failing non-critical one only degrades it.
package health
