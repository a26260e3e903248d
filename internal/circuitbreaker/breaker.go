package circuitbreaker

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/util"
)

// Breaker guards calls to one dependency.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// Option is a functional option for configuring the breaker.
type Option func(*Breaker)

// WithLogger sets the logger for state change messages.
func WithLogger(logger observability.Logger) Option {
	return func(b *Breaker) {
		b.logger = logger
	}
}

// New creates a breaker that opens after cfg.MaxFailures consecutive
// failures and probes again after cfg.Timeout.
func New(name string, cfg Config, opts ...Option) *Breaker {
	cfg = cfg.withDefaults()

	b := &Breaker{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(b)
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMax,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			getMetrics().recordStateChange(name, from, to)
			b.logger.Warn("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
		IsSuccessful: cfg.IsSuccessful,
	}

	b.cb = gobreaker.NewCircuitBreaker(settings)
	getMetrics().state.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))
	return b
}

// Execute runs fn unless the circuit is open. A rejected call returns a
// *util.CircuitOpenError without invoking fn. A context that is already
// done is reported without touching the breaker counts.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		getMetrics().rejected.WithLabelValues(b.cb.Name()).Inc()
		return util.NewCircuitOpenError(b.cb.Name(), b.cb.State().String())
	}
	return err
}

// State returns the current state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// Counts returns the counters of the current generation.
func (b *Breaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}
