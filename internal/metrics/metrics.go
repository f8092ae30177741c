// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records the service's metrics.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       prometheus.Histogram
	providerCalls *prometheus.CounterVec
	streamChunks  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mychat_http_requests_total",
			Help: "API requests by method and status code",
		}, []string{"method", "status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mychat_http_request_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mychat_provider_calls_total",
			Help: "LLM provider calls by provider, mode and outcome",
		}, []string{"provider", "mode", "outcome"}),
		streamChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mychat_stream_chunks_total",
			Help: "Streaming chunks relayed to clients by provider",
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.providerCalls,
		c.streamChunks,
	)

	return c
}

// Middleware records request counts and latency for API routes.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		c.requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		c.latency.Observe(time.Since(start).Seconds())
	})
}

// RecordProviderCall records one LLM call.
func (c *Collector) RecordProviderCall(provider, mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.providerCalls.WithLabelValues(provider, mode, outcome).Inc()
}

// RecordStreamChunk records one relayed streaming chunk.
func (c *Collector) RecordStreamChunk(provider string) {
	c.streamChunks.WithLabelValues(provider).Inc()
}
