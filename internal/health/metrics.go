package health

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// healthMetrics holds Prometheus metrics for dependency checks.
type healthMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkStatus   *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
}

var (
	healthMetricsInstance *healthMetrics
	healthMetricsOnce     sync.Once
)

func getHealthMetrics() *healthMetrics {
	healthMetricsOnce.Do(func() {
		healthMetricsInstance = &healthMetrics{
			checksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "health",
					Name:      "checks_total",
					Help:      "Total number of dependency checks performed",
				},
				[]string{"check", "result"},
			),
			checkStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "userapi",
					Subsystem: "health",
					Name:      "dependency_up",
					Help:      "Last check result per dependency (1=healthy, 0=unhealthy)",
				},
				[]string{"check", "type"},
			),
			checkDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "userapi",
					Subsystem: "health",
					Name:      "check_duration_seconds",
					Help:      "Duration of dependency checks",
					Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2},
				},
				[]string{"check"},
			),
		}
	})
	return healthMetricsInstance
}

func (m *healthMetrics) record(check, depType string, healthy bool, seconds float64) {
	result, up := "failure", 0.0
	if healthy {
		result, up = "success", 1.0
	}
	m.checksTotal.WithLabelValues(check, result).Inc()
	m.checkStatus.WithLabelValues(check, depType).Set(up)
	m.checkDuration.WithLabelValues(check).Observe(seconds)
}
