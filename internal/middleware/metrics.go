package middleware

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// middlewareMetrics contains Prometheus metrics for the request filters.
type middlewareMetrics struct {
	panicsRecovered   prometheus.Counter
	rejections        *prometheus.CounterVec
	rateLimitDegraded prometheus.Counter
	bodyLimitRejected prometheus.Counter
}

var (
	middlewareMetricsInstance *middlewareMetrics
	middlewareMetricsOnce     sync.Once
)

// getMiddlewareMetrics returns the singleton middleware metrics instance.
func getMiddlewareMetrics() *middlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetricsInstance = &middlewareMetrics{
			panicsRecovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "middleware",
					Name:      "panics_recovered_total",
					Help:      "Total number of panics recovered",
				},
			),
			rejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "middleware",
					Name:      "rejections_total",
					Help:      "Total number of requests rejected by a middleware",
				},
				[]string{"middleware", "status"},
			),
			rateLimitDegraded: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "middleware",
					Name:      "ratelimit_degraded_total",
					Help:      "Requests let through because the counter store was unavailable",
				},
			),
			bodyLimitRejected: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "middleware",
					Name:      "body_limit_rejected_total",
					Help:      "Total number of requests rejected for an oversized body",
				},
			),
		}
	})
	return middlewareMetricsInstance
}

func (m *middlewareMetrics) reject(name, status string) {
	m.rejections.WithLabelValues(name, status).Inc()
}
