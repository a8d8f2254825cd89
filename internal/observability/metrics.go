// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Aggregation metrics
	LedgerBuildDuration prometheus.Histogram
	LedgerSize          prometheus.Gauge

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mnk3ys_dashboard"
	}

	return &Metrics{
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream requests by source and outcome",
		}, []string{"source", "outcome"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Upstream request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses by cache name",
		}, []string{"cache"}),

		LedgerBuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "holders",
			Name:      "ledger_build_duration_seconds",
			Help:      "Holders ledger build duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		LedgerSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "holders",
			Name:      "ledger_size",
			Help:      "Number of wallets in the last built ledger",
		}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordUpstream records one upstream request by source and outcome.
func RecordUpstream(source, outcome string, seconds float64) {
	DefaultMetrics.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(source).Observe(seconds)
}

// RecordCacheHit increments the hit counter of a named cache.
func RecordCacheHit(cache string) {
	DefaultMetrics.CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter of a named cache.
func RecordCacheMiss(cache string) {
	DefaultMetrics.CacheMisses.WithLabelValues(cache).Inc()
}

// RecordLedgerBuild records one holders ledger build.
func RecordLedgerBuild(seconds float64, wallets int) {
	DefaultMetrics.LedgerBuildDuration.Observe(seconds)
	DefaultMetrics.LedgerSize.Set(float64(wallets))
}

// RecordRequest records one served HTTP request.
func RecordRequest(route string, seconds float64) {
	DefaultMetrics.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// WSClientConnected adjusts the connected clients gauge.
func WSClientConnected(delta int) {
	DefaultMetrics.WSClients.Add(float64(delta))
}
