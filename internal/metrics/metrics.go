package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: subsystem(service),
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shop",
		Subsystem: subsystem(service),
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// BasketMetrics counts basket mutations by store (session|user) and outcome.
type BasketMetrics struct {
	Operations *prometheus.CounterVec
}

func NewBasketMetrics(reg prometheus.Registerer, service string) *BasketMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: subsystem(service),
		Name:      "basket_operations_total",
		Help:      "Basket operations by kind, store and outcome.",
	}, []string{"op", "store", "outcome"})
	reg.MustRegister(ops)
	return &BasketMetrics{Operations: ops}
}

func (m *BasketMetrics) Observe(op, store, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, store, outcome).Inc()
}

// subsystem turns a service name like "basket-api" into a valid metric name part.
func subsystem(service string) string {
	return strings.ReplaceAll(service, "-", "_")
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
