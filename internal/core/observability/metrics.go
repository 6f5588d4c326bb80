// Package observability defines the service's Prometheus metrics.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	resolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_resolve_total",
			Help: "Default-view resolutions by fallback step and outcome.",
		},
		[]string{"step", "outcome"},
	)

	resolveDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viewer_resolve_duration_seconds",
			Help:    "Duration of default-view resolution in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewer_upstream_latency_seconds",
			Help:    "Latency of upstream query-service calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	cacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_cache_ops_total",
			Help: "Cache operations by op and status.",
		},
		[]string{"op", "status"},
	)

	cacheOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewer_cache_op_duration_seconds",
			Help:    "Duration of cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "viewer_build_info",
			Help: "Build information. Value is always 1.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, seconds float64) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, s).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, s).Observe(seconds)
}

// ObserveResolve records one resolution attempt. step names the
// fallback step that produced the view id ("default", "spatial",
// "drawing", or "none" when all three are exhausted).
func ObserveResolve(step string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	resolveTotal.WithLabelValues(step, outcome).Inc()
	resolveDurationSeconds.Observe(seconds)
}

func ObserveUpstreamLatency(upstream string, seconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(seconds)
}

func ObserveCacheOp(op string, err error, seconds float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	cacheOpsTotal.WithLabelValues(op, status).Inc()
	cacheOpDurationSeconds.WithLabelValues(op).Observe(seconds)
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
