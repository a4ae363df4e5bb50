package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine and job Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrdex",
			Name:      "solr_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"operation", "status"},
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "solrdex",
			Name:      "solr_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrdex",
			Name:      "jobs_total",
			Help:      "Total number of export and delete jobs by outcome",
		},
		[]string{"kind", "status"}, // status: "submitted" / "ok" / "failed" / "error"
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "solrdex",
			Name:      "queue_depth",
			Help:      "Jobs waiting in the queue",
		},
	)
)

var solrMetricsRegistered bool

// RegisterSolrMetrics registers search engine and job metrics. Must be called once from main.
func RegisterSolrMetrics() {
	if solrMetricsRegistered {
		return
	}
	prometheus.MustRegister(SolrRequestsTotal)
	prometheus.MustRegister(SolrRequestDuration)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(QueueDepth)
	solrMetricsRegistered = true
}
