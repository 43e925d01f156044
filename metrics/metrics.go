// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package metrics instruments HTTP handlers with Prometheus request metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP holds the request metrics of a single server.
type HTTP struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTP registers the request metrics, plus the Go runtime and process
// collectors, with a fresh registry. Every metric name is prefixed with namespace.
func NewHTTP(namespace string) *HTTP {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &HTTP{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken to respond to HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}
}

// Registry returns the registry every metric is registered with.
func (m *HTTP) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records the count, duration and concurrency of requests served by h.
func (m *HTTP) Middleware(h http.Handler) http.Handler {
	h = promhttp.InstrumentHandlerCounter(m.requests, h)
	h = promhttp.InstrumentHandlerDuration(m.duration, h)
	return promhttp.InstrumentHandlerInFlight(m.inFlight, h)
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (m *HTTP) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
