package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the site server. Each Metrics
// owns its registry, so several servers can live in one process.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	responseSize prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hxql",
			Name:      "requests_total",
			Help:      "Page requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hxql",
			Name:      "request_duration_seconds",
			Help:      "Time to resolve, hydrate and write a page.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		responseSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hxql",
			Name:      "response_size_bytes",
			Help:      "Size of successful page responses before compression.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.responseSize,
	)
	return m
}

// Observe records one finished request.
func (m *Metrics) Observe(outcome string, elapsed time.Duration, size int) {
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if size > 0 {
		m.responseSize.Observe(float64(size))
	}
}

// RegisterRoutes exposes the registry at /metrics.
func (m *Metrics) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
