package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsbias_pipeline_runs_total",
		Help: "Total number of pipeline runs by outcome",
	}, []string{"status"})

	PipelineRunDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsbias_pipeline_run_duration_seconds",
		Help:    "Duration of a full pipeline run",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	ArticlesSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_articles_selected_total",
		Help: "Total number of unclustered articles selected for a run",
	})

	ClustersGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_clusters_generated_total",
		Help: "Total number of clusters committed across all runs",
	})

	EnrichmentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_enrichment_failures_total",
		Help: "Total number of per-article enrichment failures",
	})

	EmbeddingRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsbias_embedding_request_duration_seconds",
		Help:    "Duration of embedding provider requests",
		Buckets: prometheus.DefBuckets,
	})

	EntityExtractorDisabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsbias_entity_extractor_disabled",
		Help: "Whether the entity extractor has self-disabled (0=enabled, 1=disabled)",
	})

	LabelerFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_labeler_fallbacks_total",
		Help: "Total number of clusters labeled with the fallback label",
	})

	LabelerRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsbias_labeler_request_duration_seconds",
		Help:    "Duration of labeler chat-completion requests",
		Buckets: prometheus.DefBuckets,
	})

	RefinerSplitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_refiner_splits_total",
		Help: "Total number of clusters split by the coherence refiner",
	})

	RefinerAuditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsbias_refiner_clusters_audited_total",
		Help: "Total number of clusters audited by the coherence refiner",
	})
)
