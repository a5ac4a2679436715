package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.IngestRecordsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkb_ingest_records_total",
			Help: "Total number of records ingested, by kind",
		},
		[]string{"kind"},
	)

	r.IngestSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "vkb_ingest_skipped_records_total",
			Help: "Total number of malformed input records skipped",
		},
	)

	r.SnapshotEntities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "vkb_snapshot_entities",
			Help: "Entity count of the currently loaded snapshot",
		},
	)

	r.SnapshotRelations = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "vkb_snapshot_relations",
			Help: "Relation count of the currently loaded snapshot",
		},
	)

	r.SnapshotLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkb_snapshot_loads_total",
			Help: "Total number of snapshot replacements, by origin",
		},
		[]string{"origin"},
	)

	r.PipelineDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vkb_filter_pipeline_duration_seconds",
			Help:    "Filter pipeline execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.PipelineRunsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "vkb_filter_pipeline_runs_total",
			Help: "Total number of filter pipeline executions",
		},
	)

	r.VisibleNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "vkb_visible_nodes",
			Help: "Node count of the most recently assembled graph",
		},
	)

	r.VisibleEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "vkb_visible_edges",
			Help: "Edge count of the most recently assembled graph",
		},
	)

	r.AssemblySkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "vkb_assembly_skipped_records_total",
			Help: "Total number of malformed records skipped at assembly",
		},
	)

	r.DanglingDroppedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "vkb_assembly_dangling_relations_total",
			Help: "Total number of relations dropped for missing endpoints",
		},
	)
}
