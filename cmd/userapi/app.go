package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/vyrodovalexey/userapi/internal/api"
	"github.com/vyrodovalexey/userapi/internal/auth"
	"github.com/vyrodovalexey/userapi/internal/cache"
	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/health"
	"github.com/vyrodovalexey/userapi/internal/middleware"
	"github.com/vyrodovalexey/userapi/internal/observability"
	"github.com/vyrodovalexey/userapi/internal/repository"
	"github.com/vyrodovalexey/userapi/internal/router"
	"github.com/vyrodovalexey/userapi/internal/store/postgres"
	"github.com/vyrodovalexey/userapi/internal/user"
)

// startupTimeout bounds connecting to the database and the cache.
const startupTimeout = 30 * time.Second

// application holds all application components.
type application struct {
	config        *config.Config
	db            *sql.DB
	cache         cache.Store
	tracer        *observability.Tracer
	rateLimiter   *middleware.RateLimiter
	healthChecker *health.Checker
	handler       http.Handler
	server        *http.Server
	metricsServer *http.Server
}

// initApplication connects to the backing services and wires the
// application. Failures here are fatal.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	tracer := initTracer(cfg.Tracing, logger)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", observability.Error(err))
	}
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("failed to migrate database", observability.Error(err))
		}
	}

	store := cache.New(ctx, cfg.Cache, logger)

	app, err := buildApplication(cfg, logger, tracer, db, store)
	if err != nil {
		logger.Fatal("failed to build application", observability.Error(err))
	}
	app.server = newServer(cfg.Server, app.handler)
	if cfg.Metrics.Enabled {
		app.metricsServer = createMetricsServer(cfg.Metrics, logger)
	}
	return app
}

// buildApplication wires the request path on top of an open database
// and cache.
func buildApplication(
	cfg *config.Config,
	logger observability.Logger,
	tracer *observability.Tracer,
	db *sql.DB,
	store cache.Store,
) (*application, error) {
	tokens, err := auth.NewHMACTokens(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	userStore := postgres.NewUserStore(db, cfg.Database.QueryTimeout.Duration())
	users := repository.NewUsers(userStore, store,
		repository.WithKeyPrefix(cfg.Cache.KeyPrefix),
		repository.WithTTL(cfg.Cache.TTL.Duration()),
		repository.WithLogger(logger),
	)
	service := user.NewService(users, userStore,
		user.NewValidator(),
		user.NewPasswordHasher(cfg.Password),
		user.WithLogger(logger),
	)

	checker := health.NewChecker(version, health.WithLogger(logger))
	checker.Register(health.SQLHealthCheck("database", db))
	if pinger, ok := store.(health.Pinger); ok {
		checker.Register(health.CacheHealthCheck("cache", pinger))
	}

	extractor := middleware.NewClientIPExtractor(cfg.ClientIP.TrustedProxies)
	limiter := middleware.NewRateLimiter(store, cfg.RateLimit,
		middleware.WithClientIPExtractor(extractor),
		middleware.WithRateLimitLogger(logger),
	)

	r := router.New(router.WithLogger(logger))
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(tracer),
		middleware.AccessLog(logger, extractor),
		limiter,
		middleware.ContentType(cfg.ContentType),
	)

	handlers := api.NewHandlers(service, tokens, logger)
	if err := api.Register(r, handlers, checker.Handle, middleware.Auth(tokens, logger)); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	for _, rt := range r.Routes() {
		logger.Debug("route registered",
			observability.String("method", rt.Method),
			observability.String("pattern", rt.Pattern),
			observability.Int("middlewares", rt.Middlewares),
		)
	}

	var handler http.Handler = r
	handler = middleware.BodyLimit(cfg.Server.MaxBodyBytes, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Server.SecurityHeaders)(handler)

	return &application{
		config:        cfg,
		db:            db,
		cache:         store,
		tracer:        tracer,
		rateLimiter:   limiter,
		healthChecker: checker,
		handler:       handler,
	}, nil
}

// newServer creates the public HTTP server.
func newServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration(),
		WriteTimeout:      cfg.WriteTimeout.Duration(),
		IdleTimeout:       cfg.IdleTimeout.Duration(),
	}
}

// initTracer initializes the tracer.
func initTracer(cfg config.TracingConfig, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.SamplingRate,
		Insecure:     cfg.Insecure,
		Enabled:      cfg.Enabled,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}
	return tracer
}

// applyReload applies the settings that can change without a restart:
// the log level and the rate limits. Everything else is only logged.
func applyReload(app *application, newCfg *config.Config, logger observability.Logger) {
	if setter, ok := logger.(observability.LevelSetter); ok {
		if err := setter.SetLevel(newCfg.Logging.Level); err != nil {
			logger.Error("failed to apply log level", observability.Error(err))
		}
	}

	app.rateLimiter.Update(newCfg.RateLimit)

	logger.Info("configuration reloaded",
		observability.String("log_level", newCfg.Logging.Level),
		observability.Bool("rate_limit_enabled", newCfg.RateLimit.Enabled),
		observability.Int("rate_limit_requests", newCfg.RateLimit.Requests),
		observability.Duration("rate_limit_window", newCfg.RateLimit.Window.Duration()),
	)
}
