// Package retry runs an operation again with exponential backoff and
// jitter until it succeeds, the attempts run out or the context ends.
//
// The service uses it while starting up, so that the database and the
// cache may come up after the process does:
//
//	err := retry.Do(ctx, "database.ping", &retry.Config{MaxRetries: 5}, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	}, retry.WithOnRetry(func(attempt int, err error, wait time.Duration) {
//	    logger.Warn("database not ready", observability.Error(err))
//	}))
package retry
