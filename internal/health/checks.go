package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DependencyType represents the type of dependency.
type DependencyType string

const (
	// DependencyTypeDatabase is a database dependency.
	DependencyTypeDatabase DependencyType = "database"
	// DependencyTypeCache is a cache dependency.
	DependencyTypeCache DependencyType = "cache"
	// DependencyTypeCustom is any other dependency.
	DependencyTypeCustom DependencyType = "custom"
)

// Pinger is implemented by clients of remote servers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyCheck probes one dependency.
type DependencyCheck struct {
	name     string
	depType  DependencyType
	checkFn  func(ctx context.Context) error
	critical bool
}

// DependencyCheckOption configures a DependencyCheck.
type DependencyCheckOption func(*DependencyCheck)

// WithCritical marks whether a failure makes the service unhealthy.
// Checks are critical unless configured otherwise.
func WithCritical(critical bool) DependencyCheckOption {
	return func(d *DependencyCheck) {
		d.critical = critical
	}
}

// NewDependencyCheck creates a dependency check.
func NewDependencyCheck(
	name string,
	depType DependencyType,
	checkFn func(ctx context.Context) error,
	opts ...DependencyCheckOption,
) *DependencyCheck {
	d := &DependencyCheck{
		name:     name,
		depType:  depType,
		checkFn:  checkFn,
		critical: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the name of the check.
func (d *DependencyCheck) Name() string {
	return d.name
}

// Type returns the dependency type.
func (d *DependencyCheck) Type() DependencyType {
	return d.depType
}

// IsCritical reports whether a failure makes the service unhealthy.
func (d *DependencyCheck) IsCritical() bool {
	return d.critical
}

// Check runs the probe and records its outcome.
func (d *DependencyCheck) Check(ctx context.Context) error {
	start := time.Now()
	err := d.checkFn(ctx)
	getHealthMetrics().record(d.name, string(d.depType), err == nil, time.Since(start).Seconds())
	return err
}

// SQLHealthCheck pings a SQL database.
func SQLHealthCheck(name string, db *sql.DB, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, DependencyTypeDatabase, func(ctx context.Context) error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		return nil
	}, opts...)
}

// CacheHealthCheck pings a cache backend. Caches are optional for the
// users API, so the check is non-critical unless overridden.
func CacheHealthCheck(name string, pinger Pinger, opts ...DependencyCheckOption) *DependencyCheck {
	opts = append([]DependencyCheckOption{WithCritical(false)}, opts...)
	return NewDependencyCheck(name, DependencyTypeCache, func(ctx context.Context) error {
		if pinger == nil {
			return errors.New("cache client is nil")
		}
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
		return nil
	}, opts...)
}
