package circuitbreaker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

type breakerMetrics struct {
	state        *prometheus.GaugeVec
	stateChanges *prometheus.CounterVec
	rejected     *prometheus.CounterVec
}

var (
	metricsInstance *breakerMetrics
	metricsOnce     sync.Once
)

func getMetrics() *breakerMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &breakerMetrics{
			state: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "userapi",
					Subsystem: "circuit_breaker",
					Name:      "state",
					Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
				},
				[]string{"name"},
			),
			stateChanges: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "circuit_breaker",
					Name:      "state_changes_total",
					Help:      "Total number of circuit breaker state changes",
				},
				[]string{"name", "from", "to"},
			),
			rejected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "circuit_breaker",
					Name:      "rejected_total",
					Help:      "Total number of calls rejected by an open circuit",
				},
				[]string{"name"},
			),
		}
	})
	return metricsInstance
}

func (m *breakerMetrics) recordStateChange(name string, from, to gobreaker.State) {
	m.stateChanges.WithLabelValues(name, from.String(), to.String()).Inc()
	m.state.WithLabelValues(name).Set(stateValue(to))
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
