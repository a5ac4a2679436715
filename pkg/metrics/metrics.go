package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the viewer
type Registry struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Ingest metrics
	IngestRecordsTotal  *prometheus.CounterVec
	IngestSkippedTotal  prometheus.Counter
	SnapshotEntities    prometheus.Gauge
	SnapshotRelations   prometheus.Gauge
	SnapshotLoadsTotal  *prometheus.CounterVec

	// Filter pipeline metrics
	PipelineDuration     prometheus.Histogram
	PipelineRunsTotal    prometheus.Counter
	VisibleNodes         prometheus.Gauge
	VisibleEdges         prometheus.Gauge
	AssemblySkippedTotal prometheus.Counter
	DanglingDroppedTotal prometheus.Counter

	// Gateway metrics
	GatewayRequestsTotal  *prometheus.CounterVec
	GatewayRequestLatency *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates a registry with all metrics registered
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initGraphMetrics()
	r.initGatewayMetrics()
	return r
}

// Default returns the global registry instance
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Handler returns an HTTP handler exposing the metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordSnapshotLoad records a snapshot replacement and its sizes
func (r *Registry) RecordSnapshotLoad(origin string, entities, relations, skipped int) {
	r.SnapshotLoadsTotal.WithLabelValues(origin).Inc()
	r.IngestRecordsTotal.WithLabelValues("entity").Add(float64(entities))
	r.IngestRecordsTotal.WithLabelValues("relation").Add(float64(relations))
	r.IngestSkippedTotal.Add(float64(skipped))
	r.SnapshotEntities.Set(float64(entities))
	r.SnapshotRelations.Set(float64(relations))
}

// RecordPipelineRun records one filter pipeline execution and the size
// of the assembled graph
func (r *Registry) RecordPipelineRun(duration time.Duration, nodes, edges, skipped, dangling int) {
	r.PipelineRunsTotal.Inc()
	r.PipelineDuration.Observe(duration.Seconds())
	r.VisibleNodes.Set(float64(nodes))
	r.VisibleEdges.Set(float64(edges))
	r.AssemblySkippedTotal.Add(float64(skipped))
	r.DanglingDroppedTotal.Add(float64(dangling))
}

// RecordGatewayRequest records a call to the remote query service
func (r *Registry) RecordGatewayRequest(operation, status string, duration time.Duration) {
	r.GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	r.GatewayRequestLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
