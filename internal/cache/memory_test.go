package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryStore(opts ...MemoryOption) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore(append([]MemoryOption{withClock(clock.Now)}, opts...)...)
	return s, clock
}

func TestMemoryStore_GetSet(t *testing.T) {
	t.Parallel()

	s, clock := newTestMemoryStore()
	ctx := context.Background()

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)

	value := []byte("v1")
	s.Set(ctx, "k", value, time.Minute)
	value[0] = 'x'

	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v1", string(got), "stored value must not alias the caller's slice")

	got[0] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "v1", string(again), "returned value must be a copy")

	clock.Advance(time.Minute)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_NoExpiry(t *testing.T) {
	t.Parallel()

	s, clock := newTestMemoryStore()
	s.Set(context.Background(), "k", []byte("v"), 0)

	clock.Advance(24 * time.Hour)
	_, ok := s.Get(context.Background(), "k")
	assert.True(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s, _ := newTestMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"), 0)
	s.Set(ctx, "b", []byte("2"), 0)
	s.Set(ctx, "c", []byte("3"), 0)

	s.Delete(ctx, "a")
	s.DeleteMany(ctx, "b", "missing")

	_, okA := s.Get(ctx, "a")
	_, okB := s.Get(ctx, "b")
	_, okC := s.Get(ctx, "c")
	assert.False(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestMemoryStore_Increment(t *testing.T) {
	t.Parallel()

	s, clock := newTestMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := s.Increment(ctx, "rl", time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// The window starts at the first increment and is not extended.
	clock.Advance(999 * time.Millisecond)
	n, err := s.Increment(ctx, "rl", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	clock.Advance(time.Millisecond)
	n, err = s.Increment(ctx, "rl", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_IncrementNonCounter(t *testing.T) {
	t.Parallel()

	s, _ := newTestMemoryStore()
	s.Set(context.Background(), "k", []byte("not a number"), 0)

	_, err := s.Increment(context.Background(), "k", time.Second)
	assert.Error(t, err)
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	s, clock := newTestMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "short", []byte("1"), time.Second)
	s.Set(ctx, "long", []byte("2"), time.Hour)
	clock.Advance(time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_BackgroundSweepBoundsCounters(t *testing.T) {
	t.Parallel()

	s, clock := newTestMemoryStore(WithSweepInterval(5 * time.Millisecond))
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	const clients = 10
	for window := 0; window < 50; window++ {
		for c := 0; c < clients; c++ {
			key := "ratelimit:ip:" + strconv.Itoa(c) + ":" + strconv.Itoa(window)
			_, err := s.Increment(ctx, key, time.Minute)
			require.NoError(t, err)
		}
		clock.Advance(time.Minute)
	}

	assert.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 5*time.Millisecond, "expired counters must be swept without reads")
}

func TestMemoryStore_CloseStopsSweep(t *testing.T) {
	t.Parallel()

	s, _ := newTestMemoryStore(WithSweepInterval(time.Millisecond))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case <-s.stopCh:
	default:
		t.Fatal("sweep loop not signalled to stop")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Increment(ctx, "counter", time.Minute)
			s.Set(ctx, "k", []byte("v"), time.Minute)
			s.Get(ctx, "k")
		}()
	}
	wg.Wait()

	n, err := s.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestDisabledStore(t *testing.T) {
	t.Parallel()

	var s Store = NewDisabledStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)

	s.Delete(ctx, "k")
	s.DeleteMany(ctx, "k", "j")

	_, err := s.Increment(ctx, "k", time.Second)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.NoError(t, s.Close())
}

func TestNew(t *testing.T) {
	t.Parallel()

	unreachable := config.DefaultConfig().Cache
	unreachable.Addr = "127.0.0.1:1"
	unreachable.DialTimeout = config.Duration(100 * time.Millisecond)

	disabled := config.DefaultConfig().Cache
	disabled.Enabled = false

	memory := config.DefaultConfig().Cache
	memory.Type = config.CacheTypeMemory

	unknown := config.DefaultConfig().Cache
	unknown.Type = "memcached"

	tests := []struct {
		name string
		cfg  config.CacheConfig
		want Store
	}{
		{name: "disabled", cfg: disabled, want: &DisabledStore{}},
		{name: "memory", cfg: memory, want: &MemoryStore{}},
		{name: "redis unreachable falls back", cfg: unreachable, want: &DisabledStore{}},
		{name: "unknown type falls back", cfg: unknown, want: &DisabledStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := New(context.Background(), tt.cfg, observability.NopLogger())
			defer func() { _ = store.Close() }()

			assert.IsType(t, tt.want, store)
		})
	}
}
