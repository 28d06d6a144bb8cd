// Package metrics exposes Prometheus collectors for scoring, model loading, and ingestion.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the service collectors on a private registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	scoreRequests *prometheus.CounterVec
	scoreDuration *prometheus.HistogramVec
	scoreValue    *prometheus.HistogramVec
	modelLoads    *prometheus.CounterVec
	modelLoadTime prometheus.Histogram
	ingested      *prometheus.CounterVec
}

// New creates and registers the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scoreRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rwascore_score_requests_total",
			Help: "Scoring calls by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		scoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rwascore_score_duration_seconds",
			Help:    "Scoring latency by strategy.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy"}),
		scoreValue: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rwascore_score_value",
			Help:    "Distribution of returned scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"strategy"}),
		modelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rwascore_model_loads_total",
			Help: "Model load attempts by outcome.",
		}, []string{"outcome"}),
		modelLoadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rwascore_model_load_seconds",
			Help:    "Time spent loading the embedder and classifier.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rwascore_assets_ingested_total",
			Help: "Assets catalogued by source and extraction outcome.",
		}, []string{"source", "outcome"}),
	}
	m.registry.MustRegister(
		m.scoreRequests,
		m.scoreDuration,
		m.scoreValue,
		m.modelLoads,
		m.modelLoadTime,
		m.ingested,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScore records one scoring call. score is ignored when err is non-nil.
func (m *Metrics) ObserveScore(strategy string, took time.Duration, score float64, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.scoreRequests.WithLabelValues(strategy, outcome).Inc()
	m.scoreDuration.WithLabelValues(strategy).Observe(took.Seconds())
	if err == nil {
		m.scoreValue.WithLabelValues(strategy).Observe(score)
	}
}

// ObserveModelLoad records one model load attempt. Its signature matches model.WithLoadObserver.
func (m *Metrics) ObserveModelLoad(took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.modelLoads.WithLabelValues(outcome).Inc()
	m.modelLoadTime.Observe(took.Seconds())
}

// ObserveIngest records one catalogued asset.
func (m *Metrics) ObserveIngest(source string, extractErr error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if extractErr != nil {
		outcome = OutcomeError
	}
	m.ingested.WithLabelValues(source, outcome).Inc()
}
