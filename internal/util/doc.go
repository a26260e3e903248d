// Package util provides shared error types for the users API.
//
// # Error Types
//
// Structured error types for consistent error handling:
//
//   - ConfigError: configuration validation errors
//   - StoreError: unexpected persistence failures, mapped to 500
//   - CircuitOpenError: a dependency guarded by a circuit breaker is open
//   - Common sentinel errors: ErrNotFound, ErrInvalidInput, ErrStore
//
// Wrap store failures at the persistence boundary so handlers can map
// them without inspecting driver errors:
//
//	if err != nil {
//	    return util.NewStoreError("users.insert", err)
//	}
package util
