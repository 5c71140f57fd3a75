package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the directory.
type Metrics struct {
	ProjectsIngested prometheus.Counter
	IngestFailures   *prometheus.CounterVec
	Selections       *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProjectsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "projectdir_projects_ingested_total",
			Help: "Total number of project groups committed to the store",
		}),
		IngestFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "projectdir_ingest_failures_total",
			Help: "Total number of rejected ingestions by failure class",
		}, []string{"reason"}),
		Selections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "projectdir_selections_total",
			Help: "Total number of selection calls by mode and outcome",
		}, []string{"mode", "outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projectdir_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementProjectsIngested increments the ingested counter by 1.
func (m *Metrics) IncrementProjectsIngested() {
	if m == nil {
		return
	}
	m.ProjectsIngested.Inc()
}

// IncrementIngestFailures counts one rejected ingestion with its reason.
func (m *Metrics) IncrementIngestFailures(reason string) {
	if m == nil {
		return
	}
	m.IngestFailures.WithLabelValues(reason).Inc()
}

// IncrementSelections counts one selection call with its mode and outcome.
func (m *Metrics) IncrementSelections(mode, outcome string) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(mode, outcome).Inc()
}

// ObserveRequestDuration records one request latency sample.
func (m *Metrics) ObserveRequestDuration(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
