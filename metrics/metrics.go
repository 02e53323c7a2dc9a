// Package metrics exposes Prometheus collectors for analysis runs, provider
// calls, the result cache and the HTTP host.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meetingmind"

// Outcome labels for analysis runs.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Registry holds every collector on its own prometheus.Registry.
type Registry struct {
	reg *prometheus.Registry

	AnalysisAttemptsTotal *prometheus.CounterVec
	AnalysisOutcomesTotal *prometheus.CounterVec
	AnalysisSeconds       *prometheus.HistogramVec
	AnalysisInFlight      prometheus.Gauge
	CacheLookupsTotal     *prometheus.CounterVec

	ProviderCallsTotal  *prometheus.CounterVec
	ProviderSeconds     *prometheus.HistogramVec
	ProviderErrorsTotal *prometheus.CounterVec

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPSeconds       *prometheus.HistogramVec
}

// New creates a Registry with Go runtime and process collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWith(reg)
}

func newWith(reg *prometheus.Registry) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,

		AnalysisAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_attempts_total",
				Help:      "Analysis attempts by result (ok, decode_error, schema_error, provider_error)",
			},
			[]string{"result"},
		),
		AnalysisOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_outcomes_total",
				Help:      "Completed analyses by outcome",
			},
			[]string{"outcome"},
		),
		AnalysisSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_seconds",
				Help:      "End-to-end analysis latency including retries",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		AnalysisInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "analysis_in_flight",
				Help:      "Analyses currently holding a bulkhead slot",
			},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_cache_lookups_total",
				Help:      "Analysis cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),

		ProviderCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "LLM provider calls",
			},
			[]string{"provider", "operation", "status"},
		),
		ProviderSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_seconds",
				Help:      "LLM provider call latency",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60},
			},
			[]string{"provider", "operation"},
		),
		ProviderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "LLM provider errors by type and component",
			},
			[]string{"type", "component"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordOperation records a provider call. Satisfies provider.Recorder.
func (r *Registry) RecordOperation(_ context.Context, service, operation, status string, d time.Duration) {
	r.ProviderCallsTotal.WithLabelValues(service, operation, status).Inc()
	r.ProviderSeconds.WithLabelValues(service, operation).Observe(d.Seconds())
}

// RecordError records a provider error. Satisfies provider.Recorder.
func (r *Registry) RecordError(_ context.Context, errType, component string) {
	r.ProviderErrorsTotal.WithLabelValues(errType, component).Inc()
}

// ObserveAttempt counts one analysis attempt. An empty result means ok.
func (r *Registry) ObserveAttempt(result string) {
	if result == "" {
		result = "ok"
	}
	r.AnalysisAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveAnalysis records a finished analysis.
func (r *Registry) ObserveAnalysis(outcome string, d time.Duration) {
	r.AnalysisOutcomesTotal.WithLabelValues(outcome).Inc()
	r.AnalysisSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// TrackInFlight adjusts the number of analyses currently running.
func (r *Registry) TrackInFlight(delta int) {
	r.AnalysisInFlight.Add(float64(delta))
}

// ObserveCache records a cache lookup result ("hit", "miss" or "error").
func (r *Registry) ObserveCache(result string) {
	r.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP records a served HTTP request.
func (r *Registry) ObserveHTTP(method, route string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Gatherer returns the underlying registry for scraping or tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
