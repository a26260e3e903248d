// Package postgres implements the persistent user store on PostgreSQL
// through database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/retry"
	"github.com/vyrodovalexey/userapi/internal/util"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "pgx"

const schema = `CREATE TABLE IF NOT EXISTS users (
	id        SERIAL PRIMARY KEY,
	firstname VARCHAR(100) NOT NULL,
	lastname  VARCHAR(100) NOT NULL,
	email     VARCHAR(255) NOT NULL UNIQUE,
	password  VARCHAR(255) NOT NULL
)`

// Open connects to the database, applies the pool settings and checks
// the connection. The check is retried with backoff up to
// cfg.ConnectRetries times so the service can start before PostgreSQL.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger observability.Logger) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, util.NewConfigError("database.dsn", "is required")
	}

	db, err := sql.Open(DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration())

	retries := cfg.ConnectRetries
	if retries == 0 {
		retries = -1
	}
	policy := &retry.Config{
		MaxRetries:     retries,
		InitialBackoff: cfg.ConnectBackoff.Duration(),
	}

	err = retry.Do(ctx, "database.ping", policy, func(ctx context.Context) error {
		return ping(ctx, db, cfg.QueryTimeout.Duration())
	}, retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
		logger.Warn("database not reachable, retrying",
			observability.Int("attempt", attempt),
			observability.Duration("backoff", wait),
			observability.Error(err),
		)
	}))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// Migrate creates the users table when it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return util.NewStoreError("users.migrate", err)
	}
	return nil
}
