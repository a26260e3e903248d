package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/userapi/internal/circuitbreaker"
	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/util"
)

const cacheTracerName = "github.com/vyrodovalexey/userapi/internal/cache"

// incrementScript increments a counter and starts its window on first use.
var incrementScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisOptions tunes a RedisStore.
type RedisOptions struct {
	// OperationTimeout bounds every backend call.
	OperationTimeout time.Duration
	Breaker          circuitbreaker.Config
}

// RedisStore is a Store backed by Redis. Every call is bounded by the
// operation timeout and passes through a circuit breaker; while the
// breaker is open calls fail fast as misses or no-ops.
type RedisStore struct {
	client  *redis.Client
	breaker *circuitbreaker.Breaker
	timeout time.Duration
	logger  observability.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts RedisOptions, logger observability.Logger) *RedisStore {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = config.DefaultCacheOpTimeout
	}

	breakerCfg := opts.Breaker
	breakerCfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, redis.Nil)
	}

	return &RedisStore{
		client: client,
		breaker: circuitbreaker.New("redis", breakerCfg,
			circuitbreaker.WithLogger(logger)),
		timeout: opts.OperationTimeout,
		logger:  logger,
	}
}

// DialRedis connects to Redis as configured and verifies the connection
// with a PING bounded by the dial timeout.
func DialRedis(ctx context.Context, cfg config.CacheConfig, logger observability.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout.Duration(),
		ReadTimeout:  cfg.OperationTimeout.Duration(),
		WriteTimeout: cfg.OperationTimeout.Duration(),
		PoolSize:     cfg.PoolSize,
	})

	pingTimeout := cfg.DialTimeout.Duration()
	if pingTimeout <= 0 {
		pingTimeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStore(client, RedisOptions{
		OperationTimeout: cfg.OperationTimeout.Duration(),
		Breaker: circuitbreaker.Config{
			MaxFailures: cfg.Breaker.MaxFailures,
			Timeout:     cfg.Breaker.OpenTimeout.Duration(),
			HalfOpenMax: cfg.Breaker.HalfOpenRequests,
		},
	}, logger), nil
}

// do runs fn under the breaker with a bounded context, inside a client span.
func (s *RedisStore) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer(cacheTracerName).Start(ctx, "cache."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cache.backend", BackendRedis),
			attribute.String("cache.key", key),
		),
	)
	defer span.End()
	ctx = observability.ContextWithSpan(ctx, span)

	start := time.Now()
	defer func() {
		GetMetrics().operationDuration.WithLabelValues(BackendRedis, op).Observe(time.Since(start).Seconds())
	}()

	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return fn(opCtx)
	})

	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		span.SetAttributes(attribute.Bool("cache.hit", false))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		GetMetrics().errorsTotal.WithLabelValues(BackendRedis, op).Inc()
		s.logFailure(ctx, op, key, err)
	}
	return err
}

func (s *RedisStore) logFailure(ctx context.Context, op, key string, err error) {
	logger := s.logger.WithContext(ctx)
	// An open breaker rejects every call; debug keeps the log readable.
	if errors.Is(err, util.ErrCircuitOpen) {
		logger.Debug("redis call rejected by circuit breaker",
			observability.String("operation", op),
			observability.String("key", key),
		)
		return
	}
	logger.Warn("redis call failed",
		observability.String("operation", op),
		observability.String("key", key),
		observability.Error(err),
	)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	err := s.do(ctx, "get", key, func(ctx context.Context) error {
		v, err := s.client.Get(ctx, key).Bytes()
		value = v
		return err
	})
	if err != nil {
		GetMetrics().missesTotal.WithLabelValues(BackendRedis).Inc()
		return nil, false
	}
	GetMetrics().hitsTotal.WithLabelValues(BackendRedis).Inc()
	return value, true
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = s.do(ctx, "set", key, func(ctx context.Context) error {
		return s.client.Set(ctx, key, value, ttl).Err()
	})
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	_ = s.do(ctx, "delete", key, func(ctx context.Context) error {
		return s.client.Del(ctx, key).Err()
	})
}

// DeleteMany implements Store with a single pipeline.
func (s *RedisStore) DeleteMany(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = s.do(ctx, "delete_many", keys[0], func(ctx context.Context) error {
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range keys {
				pipe.Del(ctx, key)
			}
			return nil
		})
		return err
	})
}

// Increment implements Store with an atomic INCR and PEXPIRE.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	var count int64
	err := s.do(ctx, "increment", key, func(ctx context.Context) error {
		n, err := incrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
		count = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return count, nil
}

// Ping checks connectivity, bypassing the breaker so health checks see
// the real backend state.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// BreakerState reports the circuit breaker state.
func (s *RedisStore) BreakerState() string {
	return s.breaker.State()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
