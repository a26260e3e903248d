package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/userapi/internal/config"
	"github.com/vyrodovalexey/userapi/internal/observability"
)

// createMetricsServer creates the Prometheus listener. It is separate
// from the public listener so metrics are never exposed through it.
func createMetricsServer(cfg config.MetricsConfig, logger observability.Logger) *http.Server {
	path := cfg.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	logger.Info("metrics server configured",
		observability.String("address", cfg.Address),
		observability.String("metrics_path", path),
	)

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadTimeout:       metricsServerTimeout,
		ReadHeaderTimeout: metricsServerTimeout / 2,
		WriteTimeout:      metricsServerTimeout,
	}
}
