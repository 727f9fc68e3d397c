package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Index metrics
	DocumentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ftscore_documents_total",
			Help: "Total number of documents by index",
		},
		[]string{"index"},
	)

	FieldsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ftscore_fields_total",
			Help: "Total number of distinct fields by index",
		},
		[]string{"index"},
	)

	FacetNodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ftscore_facet_nodes_total",
			Help: "Total number of facet tree nodes by index and field",
		},
		[]string{"index", "field"},
	)

	// Indexing metrics
	IndexingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_indexing_runs_total",
			Help: "Total number of indexing transactions by index and outcome",
		},
		[]string{"index", "outcome"},
	)

	IndexingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftscore_indexing_duration_seconds",
			Help:    "Time taken to run an indexing transaction, by phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index", "phase"},
	)

	TransformDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftscore_transform_duration_seconds",
			Help:    "Time taken to transform a raw document batch into sorted internal documents",
			Buckets: prometheus.DefBuckets,
		},
	)

	MergeRunFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_merge_run_files_total",
			Help: "Total number of external-sort run files merged, by target database",
		},
		[]string{"database"},
	)

	// Facet tree metrics
	FacetSplitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_facet_splits_total",
			Help: "Total number of facet tree node splits by index and field",
		},
		[]string{"index", "field"},
	)

	FacetLevelCollapsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_facet_level_collapses_total",
			Help: "Total number of facet tree level collapses by index and field",
		},
		[]string{"index", "field"},
	)

	// Query metrics
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_search_requests_total",
			Help: "Total number of search requests by index and outcome",
		},
		[]string{"index", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftscore_search_duration_seconds",
			Help:    "Search request duration in seconds, by index",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"index"},
	)

	QueryExpansionNodesTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftscore_query_expansion_nodes_total",
			Help:    "Number of alternative nodes produced by query expansion per request",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
		},
	)

	CriterionBucketsVisited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftscore_criterion_buckets_visited_total",
			Help: "Total number of ranking buckets visited by criterion",
		},
		[]string{"criterion"},
	)

	// Settings metrics
	ReindexRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ftscore_reindex_runs_total",
			Help: "Total number of full reindex passes triggered by a settings update",
		},
	)
)

func init() {
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(FieldsTotal)
	prometheus.MustRegister(FacetNodesTotal)
	prometheus.MustRegister(IndexingRunsTotal)
	prometheus.MustRegister(IndexingDuration)
	prometheus.MustRegister(TransformDuration)
	prometheus.MustRegister(MergeRunFilesTotal)
	prometheus.MustRegister(FacetSplitsTotal)
	prometheus.MustRegister(FacetLevelCollapsesTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(QueryExpansionNodesTotal)
	prometheus.MustRegister(CriterionBucketsVisited)
	prometheus.MustRegister(ReindexRunsTotal)
}

// Handler returns the Prometheus HTTP handler for a metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
