package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by Increment when the backend cannot be
// reached, is disabled, or its circuit breaker is open.
var ErrUnavailable = errors.New("cache unavailable")

// Store is a best-effort cache. Get reports a miss on any backend
// failure and Set/Delete/DeleteMany swallow failures: callers must stay
// correct without the cache. Only Increment reports unavailability,
// because the rate limiter has to tell "zero hits" from "unknown".
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes key.
	Delete(ctx context.Context, key string)

	// DeleteMany removes keys in one round trip.
	DeleteMany(ctx context.Context, keys ...string)

	// Increment adds one to the counter under key and returns the new
	// value. The counter expires window after its first increment.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend names used in metrics and logs.
const (
	BackendRedis    = "redis"
	BackendMemory   = "memory"
	BackendDisabled = "disabled"
)
