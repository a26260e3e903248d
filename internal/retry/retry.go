package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Default retry configuration constants.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultJitterFactor   = 0.25

	// MaxJitterFactor is the maximum allowed jitter factor.
	MaxJitterFactor = 1.0
)

// Config contains retry configuration parameters. Zero fields take the
// package defaults, except MaxRetries on a non-nil Config where a
// negative value disables retrying.
type Config struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Every further
	// retry doubles it.
	InitialBackoff time.Duration

	// MaxBackoff caps a single wait.
	MaxBackoff time.Duration

	// JitterFactor adds up to this fraction of the wait at random.
	JitterFactor float64
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		JitterFactor:   DefaultJitterFactor,
	}
}

// GetMaxRetries returns the effective max retries.
func (c *Config) GetMaxRetries() int {
	switch {
	case c == nil || c.MaxRetries == 0:
		return DefaultMaxRetries
	case c.MaxRetries < 0:
		return 0
	}
	return c.MaxRetries
}

// GetInitialBackoff returns the effective initial backoff.
func (c *Config) GetInitialBackoff() time.Duration {
	if c == nil || c.InitialBackoff <= 0 {
		return DefaultInitialBackoff
	}
	return c.InitialBackoff
}

// GetMaxBackoff returns the effective max backoff.
func (c *Config) GetMaxBackoff() time.Duration {
	if c == nil || c.MaxBackoff <= 0 {
		return DefaultMaxBackoff
	}
	return c.MaxBackoff
}

// GetJitterFactor returns the effective jitter factor.
func (c *Config) GetJitterFactor() float64 {
	if c == nil || c.JitterFactor <= 0 {
		return DefaultJitterFactor
	}
	if c.JitterFactor > MaxJitterFactor {
		return MaxJitterFactor
	}
	return c.JitterFactor
}

// Func is an operation that can be retried.
type Func func(ctx context.Context) error

// OnRetryFunc is called before each wait.
type OnRetryFunc func(attempt int, err error, backoff time.Duration)

type options struct {
	shouldRetry func(error) bool
	onRetry     OnRetryFunc
}

// Option configures Do.
type Option func(*options)

// WithShouldRetry stops retrying as soon as fn returns false for an
// error. By default every error is retried.
func WithShouldRetry(fn func(error) bool) Option {
	return func(o *options) {
		o.shouldRetry = fn
	}
}

// WithOnRetry sets a callback invoked before each wait.
func WithOnRetry(fn OnRetryFunc) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

// Do runs fn until it succeeds. operation labels the metrics. When the
// context ends while waiting, the returned error wraps both the context
// error and the last error of fn.
func Do(ctx context.Context, operation string, cfg *Config, fn Func, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	maxRetries := cfg.GetMaxRetries()
	initialBackoff := cfg.GetInitialBackoff()
	maxBackoff := cfg.GetMaxBackoff()
	jitterFactor := cfg.GetJitterFactor()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return finish(operation, start, errors.Join(err, lastErr))
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return finish(operation, start, nil)
		}

		if o.shouldRetry != nil && !o.shouldRetry(lastErr) {
			return finish(operation, start, lastErr)
		}

		if attempt == maxRetries {
			break
		}

		backoff := CalculateBackoff(attempt, initialBackoff, maxBackoff, jitterFactor)
		if o.onRetry != nil {
			o.onRetry(attempt+1, lastErr, backoff)
		}
		getRetryMetrics().attempts.WithLabelValues(operation).Inc()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return finish(operation, start, errors.Join(ctx.Err(), lastErr))
		case <-timer.C:
		}
	}

	return finish(operation, start, lastErr)
}

func finish(operation string, start time.Time, err error) error {
	getRetryMetrics().observe(operation, err == nil, time.Since(start))
	return err
}

// CalculateBackoff calculates the wait before retry attempt+1.
func CalculateBackoff(attempt int, initialBackoff, maxBackoff time.Duration, jitterFactor float64) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))

	//nolint:gosec // G404: jitter for retry timing is not security-sensitive
	backoff += backoff * jitterFactor * rand.Float64()

	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}

	return time.Duration(backoff)
}
