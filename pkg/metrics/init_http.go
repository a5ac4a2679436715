package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vkb_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "vkb_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initGatewayMetrics() {
	r.GatewayRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkb_gateway_requests_total",
			Help: "Total number of remote query service requests",
		},
		[]string{"operation", "status"},
	)

	r.GatewayRequestLatency = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vkb_gateway_request_duration_seconds",
			Help:    "Remote query service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}
