// Package metrics exposes Prometheus collectors for scoring, HTTP traffic and batch jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

// Metric names as constants for consistency.
const (
	MetricScoringRequests      = "similarity_scoring_requests_total"
	MetricCandidatesScored     = "similarity_candidates_scored_total"
	MetricInvalidSignals       = "similarity_invalid_signals_total"
	MetricFinalScore           = "similarity_final_score"
	MetricScoringDuration      = "similarity_scoring_duration_seconds"
	MetricHTTPRequestsTotal    = "http_requests_total"
	MetricHTTPRequestDuration  = "http_request_duration_seconds"
	MetricJobsFinished         = "similarity_jobs_finished_total"
	MetricJobExecutionDuration = "similarity_job_duration_seconds"
)

// Metrics contains the service's Prometheus collectors.
// All operations are thread-safe.
type Metrics struct {
	scoringRequests     *prometheus.CounterVec
	candidatesScored    prometheus.Counter
	invalidSignals      *prometheus.CounterVec
	finalScore          prometheus.Histogram
	scoringDuration     *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	jobsFinished        *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		scoringRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricScoringRequests,
				Help: "Total number of scoring requests by kind (score, explore, batch)",
			},
			[]string{"kind"},
		),
		candidatesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricCandidatesScored,
				Help: "Total number of candidates scored",
			},
		),
		invalidSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricInvalidSignals,
				Help: "Total number of signal readings discarded during normalization",
			},
			[]string{"signal"},
		),
		finalScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricFinalScore,
				Help:    "Distribution of final similarity scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10), // 10 to 100
			},
		),
		scoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricScoringDuration,
				Help:    "Time spent scoring and ranking one candidate set",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
			[]string{"kind"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
			},
			[]string{"method", "path", "status"},
		),
		jobsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricJobsFinished,
				Help: "Total number of batch jobs that reached a terminal status",
			},
			[]string{"type", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricJobExecutionDuration,
				Help:    "Batch job execution time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"type"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.scoringRequests,
		m.candidatesScored,
		m.invalidSignals,
		m.finalScore,
		m.scoringDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.jobsFinished,
		m.jobDuration,
	}
}

// ObserveScoring records one scored candidate set.
func (m *Metrics) ObserveScoring(kind model.ScoreEventKind, results []model.ScoredResult, duration time.Duration) {
	m.scoringRequests.WithLabelValues(string(kind)).Inc()
	m.scoringDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	m.candidatesScored.Add(float64(len(results)))

	for _, result := range results {
		m.finalScore.Observe(result.FinalScore)
		for _, warning := range result.Warnings {
			m.invalidSignals.WithLabelValues(warning.Signal).Inc()
		}
	}
}

// ObserveHTTPRequest records HTTP request metrics.
// path should be the route template (e.g. "/jobs/:jobId") to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": status,
	}
	m.httpRequestsTotal.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// JobFinished records a batch job reaching a terminal status.
func (m *Metrics) JobFinished(jobType model.JobType, status model.JobStatus, duration time.Duration) {
	m.jobsFinished.WithLabelValues(string(jobType), string(status)).Inc()
	if status == model.JobStatusCompleted {
		m.jobDuration.WithLabelValues(string(jobType)).Observe(duration.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
