// Package cache provides the best-effort key/value store shared by the
// user repository and the rate limiter.
//
// # Backends
//
//   - RedisStore: go-redis client guarded by a per-call timeout and a
//     circuit breaker
//   - MemoryStore: process-local map with TTLs, for single-instance
//     deployments and tests
//   - DisabledStore: stores nothing
//
// # Degraded Mode
//
// Backend failures never reach callers of Get, Set, Delete or
// DeleteMany. They are logged, counted in
// userapi_cache_errors_total and reported as a miss or a no-op.
// Increment is the exception and returns ErrUnavailable, so that the
// rate limiter can let traffic through instead of guessing.
//
// # Usage
//
//	store := cache.New(ctx, cfg.Cache, logger)
//	defer store.Close()
//
//	store.Set(ctx, "app:users:1", payload, time.Minute)
//	if data, ok := store.Get(ctx, "app:users:1"); ok {
//	    // use data
//	}
package cache
