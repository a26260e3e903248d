package router

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// routerMetrics contains Prometheus metrics for request dispatch.
type routerMetrics struct {
	requestsTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

var (
	routerMetricsInstance *routerMetrics
	routerMetricsOnce     sync.Once
)

// getRouterMetrics returns the singleton router metrics instance.
func getRouterMetrics() *routerMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = &routerMetrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "userapi",
					Subsystem: "router",
					Name:      "requests_total",
					Help:      "Total number of dispatched requests",
				},
				[]string{"method", "route", "status"},
			),
			dispatchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "userapi",
					Subsystem: "router",
					Name:      "dispatch_duration_seconds",
					Help:      "Time spent dispatching a request through its chain",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})
	return routerMetricsInstance
}

func (m *routerMetrics) observe(method, route string, status int, seconds float64) {
	method = methodLabel(method)
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.dispatchDuration.WithLabelValues(method, route).Observe(seconds)
}

// methodLabel bounds label cardinality to the standard methods.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return method
	}
	return "OTHER"
}
