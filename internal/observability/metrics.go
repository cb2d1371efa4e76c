package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	submissionsTotal       *prometheus.CounterVec
	revaluationsTotal      prometheus.Counter
	revaluationDurationSec prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors for the API and
// the quiz engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizzo_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizzo_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizzo_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizzo_submissions_total",
			Help: "Total number of quiz submissions, by outcome.",
		}, []string{"status"})

		revaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizzo_revaluations_total",
			Help: "Total number of quiz revaluation runs.",
		})

		revaluationDurationSec = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizzo_revaluation_duration_seconds",
			Help:    "Duration distribution of quiz revaluation runs.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			revaluationsTotal,
			revaluationDurationSec,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsTotal exposes the counter for quiz submissions, labelled by
// outcome ("accepted" or "failed").
func SubmissionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// RevaluationsTotal exposes the counter for revaluation runs.
func RevaluationsTotal() prometheus.Counter {
	RegisterMetrics()
	return revaluationsTotal
}

// RevaluationDuration exposes the duration histogram for revaluation
// runs.
func RevaluationDuration() prometheus.Histogram {
	RegisterMetrics()
	return revaluationDurationSec
}
