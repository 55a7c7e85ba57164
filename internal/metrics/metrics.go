// Package metrics exposes lookup pipeline counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serroba/url-hashprefix/internal/lookup"
)

const namespace = "hashprefix"

// Label values.
const (
	OutcomeCanonical = "canonical"
	OutcomeRejected  = "rejected"
	CacheHit         = "hit"
	CacheMiss        = "miss"
)

// Metrics records pipeline observations on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	canonicalize *prometheus.CounterVec
	cache        *prometheus.CounterVec
	expressions  prometheus.Histogram
}

// New creates a registry with the pipeline collectors plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		canonicalize: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "canonicalize_total",
			Help:      "URLs submitted for canonicalization by outcome.",
		}, []string{"outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		expressions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expressions",
			Help:      "Lookup expressions generated per canonical URL.",
			Buckets:   []float64{1, 2, 4, 6, 10, 15, 20, 30},
		}),
	}

	m.registry.MustRegister(
		m.canonicalize,
		m.cache,
		m.expressions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveComputation(canonicalized bool, expressions int) {
	if !canonicalized {
		m.canonicalize.WithLabelValues(OutcomeRejected).Inc()

		return
	}

	m.canonicalize.WithLabelValues(OutcomeCanonical).Inc()
	m.expressions.Observe(float64(expressions))
}

func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.cache.WithLabelValues(CacheHit).Inc()

		return
	}

	m.cache.WithLabelValues(CacheMiss).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Compile-time check.
var (
	_ lookup.Recorder      = (*Metrics)(nil)
	_ lookup.CacheRecorder = (*Metrics)(nil)
)
