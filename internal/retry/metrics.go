package retry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type retryMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	retryMetricsInstance *retryMetrics
	retryMetricsOnce     sync.Once
)

func getRetryMetrics() *retryMetrics {
	retryMetricsOnce.Do(func() {
		retryMetricsInstance = &retryMetrics{
			attempts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "retry",
					Name:      "attempts_total",
					Help:      "Total number of retries after a failed attempt",
				},
				[]string{"operation"},
			),
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "userapi",
					Subsystem: "retry",
					Name:      "duration_seconds",
					Help:      "Total duration of retried operations",
					Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"operation", "result"},
			),
		}
	})
	return retryMetricsInstance
}

func (m *retryMetrics) observe(operation string, success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.duration.WithLabelValues(operation, result).Observe(d.Seconds())
}
