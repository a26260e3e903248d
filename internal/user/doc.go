// Package user holds the user model and its use cases: payload
// validation, password hashing and the Service consumed by the HTTP
// handlers.
//
// Storage is reached through the Repository and CredentialStore
// interfaces so the service can run against the cache-aside
// repository in production and an in-memory fake in tests.
package user
