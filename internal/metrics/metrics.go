// Package metrics exposes Prometheus instrumentation for the analysis API
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalyzeRequests counts analysis API requests by endpoint and outcome
	AnalyzeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total analysis API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// AnalysisDuration observes end-to-end analysis latency including the
	// upstream data fetch
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Analysis latency in seconds, data fetch included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CheckpointCaptures counts checkpoint captures by result
	CheckpointCaptures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkpoint_captures_total",
			Help: "Checkpoint capture attempts by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(AnalyzeRequests, AnalysisDuration, CheckpointCaptures)
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
