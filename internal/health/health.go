package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/router"
)

// DefaultCheckTimeout bounds a single dependency check.
const DefaultCheckTimeout = 2 * time.Second

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates every dependency answered.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates a non-critical dependency failed.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates a critical dependency failed.
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status     Status  `json:"status"`
	Type       string  `json:"type"`
	Critical   bool    `json:"critical"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Report is the body of the health endpoint.
type Report struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker aggregates dependency checks.
type Checker struct {
	version   string
	startTime time.Time
	timeout   time.Duration
	logger    observability.Logger

	mu     sync.RWMutex
	checks []*DependencyCheck
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the per-check timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker reporting version.
func NewChecker(version string, opts ...Option) *Checker {
	c := &Checker{
		version:   version,
		startTime: time.Now(),
		timeout:   DefaultCheckTimeout,
		logger:    observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds dependency checks. A check with the name of an
// existing one replaces it.
func (c *Checker) Register(checks ...*DependencyCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, check := range checks {
		replaced := false
		for i, existing := range c.checks {
			if existing.Name() == check.Name() {
				c.checks[i] = check
				replaced = true
				break
			}
		}
		if !replaced {
			c.checks = append(c.checks, check)
		}
	}
}

// Names returns the registered check names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for _, check := range c.checks {
		names = append(names, check.Name())
	}
	sort.Strings(names)
	return names
}

// Check runs every registered check concurrently and aggregates them.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make([]*DependencyCheck, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	results := make([]CheckResult, len(checks))

	// checks report failures in their result, never through the group
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = c.run(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(checks)),
	}
	for i, check := range checks {
		result := results[i]
		report.Checks[check.Name()] = result

		switch {
		case result.Status == StatusHealthy:
		case result.Critical:
			report.Status = StatusUnhealthy
		case report.Status != StatusUnhealthy:
			report.Status = StatusDegraded
		}
	}
	return report
}

func (c *Checker) run(ctx context.Context, check *DependencyCheck) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	result := CheckResult{
		Status:     StatusHealthy,
		Type:       string(check.Type()),
		Critical:   check.IsCritical(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		c.logger.Warn("dependency check failed",
			observability.String("check", check.Name()),
			observability.Bool("critical", check.IsCritical()),
			observability.Error(err),
		)
	}
	return result
}

// Handle serves the health endpoint: 503 when a critical dependency is
// down, 200 otherwise.
func (c *Checker) Handle(ctx *router.Context) *router.Response {
	report := c.Check(ctx.Context())

	status := http.StatusOK
	if report.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	return router.JSON(status, report).WithHeader("Cache-Control", "no-store")
}
