// Package metrics holds the Prometheus collectors for the profile directory.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profiledir"

// Leg results
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Metrics owns a private registry so tests and multiple app instances never collide
type Metrics struct {
	Registry *prometheus.Registry

	// Commits counts fan-out commits by aggregate status
	Commits *prometheus.CounterVec

	// CommitLegs counts individual persistence legs by operation and result
	CommitLegs *prometheus.CounterVec

	// CommitDuration tracks wall time of a fan-out commit
	CommitDuration *prometheus.HistogramVec

	// DirectoryFallbacks counts edits saved without the club directory
	DirectoryFallbacks prometheus.Counter

	// HTTPRequests counts API requests by method, route and status code
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration tracks API request latency
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Commits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commit_total",
				Help:      "Total number of profile commits by aggregate status",
			},
			[]string{"status"},
		),
		CommitLegs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commit_leg_total",
				Help:      "Total number of per-record persistence calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		CommitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "commit_duration_seconds",
				Help:      "Time spent committing a profile edit",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		DirectoryFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "directory_fallback_total",
				Help:      "Total number of edits whose club history was kept as free text because the directory was unavailable",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveCommit records one finished commit
func (m *Metrics) ObserveCommit(status string, elapsed time.Duration) {
	m.Commits.WithLabelValues(status).Inc()
	m.CommitDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveLeg records one persistence call within a commit
func (m *Metrics) ObserveLeg(operation string, succeeded bool) {
	result := ResultFailed
	if succeeded {
		result = ResultSucceeded
	}
	m.CommitLegs.WithLabelValues(operation, result).Inc()
}

// ObserveDirectoryFallback records one edit saved without the club directory
func (m *Metrics) ObserveDirectoryFallback() {
	m.DirectoryFallbacks.Inc()
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
