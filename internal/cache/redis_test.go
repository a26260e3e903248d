package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/userapi/internal/circuitbreaker"
	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/util"
)

// setupMiniRedis creates a miniredis server and a store connected to it.
func setupMiniRedis(t *testing.T, breaker circuitbreaker.Config) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:                  mr.Addr(),
		MaxRetries:            -1,
		DialTimeout:           100 * time.Millisecond,
		ContextTimeoutEnabled: true,
	})
	store := NewRedisStore(client, RedisOptions{
		OperationTimeout: 500 * time.Millisecond,
		Breaker:          breaker,
	}, observability.NopLogger())
	t.Cleanup(func() { _ = store.Close() })

	return mr, store
}

func TestRedisStore_GetSet(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{})
	ctx := context.Background()

	_, ok := store.Get(ctx, "app:users")
	assert.False(t, ok)

	store.Set(ctx, "app:users", []byte(`[{"id":1}]`), time.Minute)

	got, ok := store.Get(ctx, "app:users")
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("app:users"))

	mr.FastForward(time.Minute)
	_, ok = store.Get(ctx, "app:users")
	assert.False(t, ok)
}

func TestRedisStore_MissDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	_, store := setupMiniRedis(t, circuitbreaker.Config{MaxFailures: 1, Timeout: time.Hour})

	for i := 0; i < 5; i++ {
		_, ok := store.Get(context.Background(), "absent")
		assert.False(t, ok)
	}
	assert.Equal(t, "closed", store.BreakerState())
}

func TestRedisStore_Delete(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{})
	ctx := context.Background()

	require.NoError(t, mr.Set("app:users:1", "x"))
	store.Delete(ctx, "app:users:1")
	assert.False(t, mr.Exists("app:users:1"))

	// Deleting an absent key is fine.
	store.Delete(ctx, "app:users:1")
}

func TestRedisStore_DeleteMany(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{})

	require.NoError(t, mr.Set("app:users", "[]"))
	require.NoError(t, mr.Set("app:users:7", "{}"))
	require.NoError(t, mr.Set("app:users:8", "{}"))

	store.DeleteMany(context.Background(), "app:users:7", "app:users", "app:users:missing")

	assert.False(t, mr.Exists("app:users"))
	assert.False(t, mr.Exists("app:users:7"))
	assert.True(t, mr.Exists("app:users:8"))

	store.DeleteMany(context.Background())
}

func TestRedisStore_Increment(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{})
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := store.Increment(ctx, "ratelimit:1.2.3.4:100", time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, time.Second, mr.TTL("ratelimit:1.2.3.4:100"))

	mr.FastForward(time.Second)

	n, err := store.Increment(ctx, "ratelimit:1.2.3.4:100", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore_BackendDown(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{MaxFailures: 100, Timeout: time.Hour})
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	mr.Close()

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Delete(ctx, "k")
	store.DeleteMany(ctx, "k", "j")

	_, err := store.Increment(ctx, "counter", time.Second)
	assert.True(t, errors.Is(err, ErrUnavailable))

	assert.Error(t, store.Ping(ctx))
}

func TestRedisStore_FailureLogCarriesTrace(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{MaxFailures: 100, Timeout: time.Hour})
	core, logs := observer.New(zapcore.WarnLevel)
	store.logger = observability.NewFromZap(zap.New(core))
	mr.Close()

	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	ctx, parent := provider.Tracer("test").Start(context.Background(), "request")
	defer parent.End()

	_, ok := store.Get(ctx, "users:1")
	assert.False(t, ok)

	entries := logs.FilterMessage("redis call failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "get", fields["operation"])
	assert.Equal(t, parent.SpanContext().TraceID().String(), fields["trace_id"])
	assert.NotEmpty(t, fields["span_id"])
}

func TestRedisStore_BreakerOpens(t *testing.T) {
	t.Parallel()

	mr, store := setupMiniRedis(t, circuitbreaker.Config{MaxFailures: 2, Timeout: time.Hour})
	ctx := context.Background()
	mr.Close()

	store.Get(ctx, "a")
	store.Get(ctx, "b")
	assert.Equal(t, "open", store.BreakerState())

	_, err := store.Increment(ctx, "counter", time.Second)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, util.ErrCircuitOpen))
}

func TestRedisStore_Ping(t *testing.T) {
	t.Parallel()

	_, store := setupMiniRedis(t, circuitbreaker.Config{})
	assert.NoError(t, store.Ping(context.Background()))
}

func TestDialRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	cfg := config.DefaultConfig().Cache
	cfg.Addr = mr.Addr()

	store, err := DialRedis(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	store.Set(context.Background(), "k", []byte("v"), 0)
	got, ok := store.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestDialRedis_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.DefaultConfig().Cache
	cfg.Addr = addr
	cfg.DialTimeout = config.Duration(100 * time.Millisecond)

	store, err := DialRedis(context.Background(), cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}
