package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
)

// metricsServerTimeout bounds reads and writes on the metrics listener.
const metricsServerTimeout = 10 * time.Second

// runApplication serves until SIGINT, SIGTERM or a listener failure,
// then shuts down.
func runApplication(app *application, configPath string, logger observability.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := startConfigWatcher(ctx, app, configPath, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", observability.String("address", app.server.Addr))
		return serve(app.server)
	})
	if app.metricsServer != nil {
		g.Go(func() error {
			return serve(app.metricsServer)
		})
	}

	<-gctx.Done()
	if ctx.Err() != nil {
		logger.Info("received shutdown signal")
	}

	shutdown(app, watcher, logger)

	if err := g.Wait(); err != nil {
		logger.Error("server failed", observability.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("userapi stopped")
}

// serve runs srv until it is shut down.
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startConfigWatcher watches the configuration file and applies the
// reloadable settings. A watcher that cannot start is not fatal.
func startConfigWatcher(ctx context.Context, app *application, configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		applyReload(app, newCfg, logger)
	},
		config.WithLogger(logger),
		config.WithErrorCallback(func(err error) {
			logger.Warn("configuration reload rejected", observability.Error(err))
		}),
	)
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}
	return watcher
}

// shutdown stops the application in dependency order: listeners first,
// then the watcher and tracer, then the cache and the database.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop config watcher", observability.Error(err))
		}
	}

	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown tracer", observability.Error(err))
		}
	}

	if err := app.cache.Close(); err != nil {
		logger.Warn("failed to close cache", observability.Error(err))
	}

	if err := app.db.Close(); err != nil {
		logger.Error("failed to close database", observability.Error(err))
	}
}
