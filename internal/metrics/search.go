package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and classification Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipdex",
			Name:      "searches_total",
			Help:      "Total number of searches executed",
		},
		[]string{"mode"}, // "similarity" / "filter" / "record"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shipdex",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shipdex",
			Name:      "search_results_returned",
			Help:      "Number of result groups returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"mode"},
	)

	SimilarityFillTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shipdex",
			Name:      "similarity_fill_total",
			Help:      "Filter searches topped up with similarity results",
		},
	)

	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shipdex",
			Name:      "classifications_total",
			Help:      "Total classification requests by outcome",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)

	CorpusRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shipdex",
			Name:      "corpus_records",
			Help:      "Records in the loaded corpus",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(SimilarityFillTotal)
	prometheus.MustRegister(ClassificationsTotal)
	prometheus.MustRegister(CorpusRecords)
	searchMetricsRegistered = true
}
