package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/userapi/internal/cache"
	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// degradedWarnInterval spaces out warnings while the counter store is
// unavailable.
const degradedWarnInterval = time.Minute

// RateLimiter is a fixed window limiter whose counters live in a shared
// cache.Store, so every instance of the service sees the same counts.
// Clients are keyed by their authenticated subject, falling back to the
// client address. When the store cannot count, requests go through.
type RateLimiter struct {
	store     cache.Store
	extractor *ClientIPExtractor
	logger    observability.Logger
	now       func() time.Time
	degraded  rate.Sometimes

	mu        sync.RWMutex
	enabled   bool
	limit     int64
	window    time.Duration
	keyPrefix string
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithClientIPExtractor sets the extractor used for anonymous clients.
func WithClientIPExtractor(e *ClientIPExtractor) RateLimiterOption {
	return func(rl *RateLimiter) {
		if e != nil {
			rl.extractor = e
		}
	}
}

// WithRateLimitLogger sets the logger.
func WithRateLimitLogger(logger observability.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// NewRateLimiter creates a limiter counting in store.
func NewRateLimiter(store cache.Store, cfg config.RateLimitConfig, opts ...RateLimiterOption) *RateLimiter {
	if store == nil {
		store = cache.NewDisabledStore()
	}

	rl := &RateLimiter{
		store:     store,
		extractor: NewClientIPExtractor(nil),
		logger:    observability.NopLogger(),
		now:       time.Now,
		degraded:  rate.Sometimes{Interval: degradedWarnInterval},
	}
	rl.Update(cfg)

	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Update applies new limits. Counters already in the store keep their
// windows; the new limit applies from the next request.
func (rl *RateLimiter) Update(cfg config.RateLimitConfig) {
	limit := int64(cfg.Requests)
	if limit <= 0 {
		limit = config.DefaultRateLimitRequest
	}
	window := cfg.Window.Duration()
	if window < time.Second {
		window = config.DefaultRateLimitWindow
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = config.DefaultRateLimitPrefix
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.enabled = cfg.Enabled
	rl.limit = limit
	rl.window = window
	rl.keyPrefix = prefix
}

type rateLimitSettings struct {
	enabled   bool
	limit     int64
	window    time.Duration
	keyPrefix string
}

func (rl *RateLimiter) settings() rateLimitSettings {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rateLimitSettings{
		enabled:   rl.enabled,
		limit:     rl.limit,
		window:    rl.window,
		keyPrefix: rl.keyPrefix,
	}
}

// Process implements router.Middleware.
func (rl *RateLimiter) Process(ctx *router.Context, next *router.Chain) *router.Response {
	s := rl.settings()
	if !s.enabled {
		return next.Proceed(ctx)
	}

	client := rl.clientKey(ctx)
	now := rl.now()
	start := windowStart(now, s.window)
	key := s.keyPrefix + ":" + client + ":" + strconv.FormatInt(start.Unix(), 10)

	count, err := rl.store.Increment(ctx.Context(), key, s.window)
	if err != nil {
		getMiddlewareMetrics().rateLimitDegraded.Inc()
		log := rl.logger.WithContext(ctx.Context())
		log.Debug("rate limit store unavailable, allowing request",
			observability.String("client", client),
			observability.Error(err),
		)
		rl.degraded.Do(func() {
			log.Warn("rate limiting suspended, counter store unavailable", observability.Error(err))
		})
		return next.Proceed(ctx)
	}

	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}

	if count > s.limit {
		retryAfter := retryAfterSeconds(start.Add(s.window).Sub(now))
		rl.logger.WithContext(ctx.Context()).Debug("rate limit exceeded",
			observability.String("client", client),
			observability.Int64("count", count),
			observability.Int64("limit", s.limit),
		)
		getMiddlewareMetrics().reject("ratelimit", "429")

		return router.ErrorResponse(http.StatusTooManyRequests, MsgTooManyRequests).
			WithHeader(HeaderRetryAfter, strconv.FormatInt(retryAfter, 10)).
			WithHeader(HeaderRateLimitLimit, strconv.FormatInt(s.limit, 10)).
			WithHeader(HeaderRateLimitRemaining, "0")
	}

	resp := next.Proceed(ctx)
	if resp == nil {
		return nil
	}
	return resp.
		WithHeader(HeaderRateLimitLimit, strconv.FormatInt(s.limit, 10)).
		WithHeader(HeaderRateLimitRemaining, strconv.FormatInt(remaining, 10))
}

// clientKey identifies the caller: the token subject when the request
// is authenticated, the client address otherwise.
func (rl *RateLimiter) clientKey(ctx *router.Context) string {
	if id := ctx.Identity(); id != nil && id.Subject() != "" {
		return "user:" + id.Subject()
	}
	return "ip:" + rl.extractor.Extract(ctx.Request)
}

// windowStart aligns now to the start of its fixed window.
func windowStart(now time.Time, window time.Duration) time.Time {
	nanos := now.UnixNano()
	return time.Unix(0, nanos-nanos%int64(window))
}

// retryAfterSeconds rounds d up to whole seconds, at least one.
func retryAfterSeconds(d time.Duration) int64 {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
