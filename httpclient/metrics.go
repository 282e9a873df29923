package httpclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type clientMetrics struct {
	requests      *prometheus.CounterVec
	invalidations prometheus.Counter
}

func newClientMetrics() *clientMetrics {
	return &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory_console",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by method and status class.",
		}, []string{"method", "status_class"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory_console",
			Subsystem: "api",
			Name:      "token_invalidations_total",
			Help:      "Responses that declared the access token invalid.",
		}),
	}
}

func (m *clientMetrics) register(reg prometheus.Registerer) error {
	if err := reg.Register(m.requests); err != nil {
		return err
	}
	return reg.Register(m.invalidations)
}

func (m *clientMetrics) observe(method string, statusCode int) {
	m.requests.WithLabelValues(method, statusClass(statusCode)).Inc()
}

func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
