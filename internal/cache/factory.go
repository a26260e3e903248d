package cache

import (
	"context"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
)

// New builds the configured store. The cache is never a startup
// dependency: when Redis cannot be reached the DisabledStore is
// returned and the failure is logged.
func New(ctx context.Context, cfg config.CacheConfig, logger observability.Logger) Store {
	if logger == nil {
		logger = observability.NopLogger()
	}
	GetMetrics().Init()

	if !cfg.Enabled {
		logger.Info("cache disabled")
		return NewDisabledStore()
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		logger.Info("using in-memory cache")
		return NewMemoryStore()

	case config.CacheTypeRedis:
		store, err := DialRedis(ctx, cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache",
				observability.String("addr", cfg.Addr),
				observability.Error(err),
			)
			return NewDisabledStore()
		}
		logger.Info("connected to redis",
			observability.String("addr", cfg.Addr),
			observability.Int("db", cfg.DB),
		)
		return store

	default:
		logger.Warn("unknown cache type, continuing without cache",
			observability.String("type", cfg.Type),
		)
		return NewDisabledStore()
	}
}
