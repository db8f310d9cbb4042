package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	uploadLatencySeconds *prometheus.HistogramVec
	uploadRejectedTotal  *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	gradingOutcomesTotal *prometheus.CounterVec
	rosterCacheTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		uploadLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blob_upload_latency_seconds",
			Help:    "Latency of uploads to blob storage.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"scope"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blob_upload_rejected_total",
			Help: "Uploads rejected before or during storage.",
		}, []string{"reason"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_received_total",
			Help: "Submissions accepted, split by timeliness.",
		}, []string{"timeliness"})

		gradingOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_outcomes_total",
			Help: "Grading operations by operation and outcome.",
		}, []string{"operation", "outcome"})

		rosterCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_cache_lookups_total",
			Help: "Roster cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			uploadLatencySeconds,
			uploadRejectedTotal,
			submissionsTotal,
			gradingOutcomesTotal,
			rosterCacheTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// UploadLatency exposes the blob upload latency histogram.
func UploadLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// SubmissionsReceived exposes the submission counter.
func SubmissionsReceived() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// GradingOutcomes exposes the grading outcome counter.
func GradingOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingOutcomesTotal
}

// RosterCacheLookups exposes the roster cache counter.
func RosterCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return rosterCacheTotal
}
