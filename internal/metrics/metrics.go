// Package metrics provides Prometheus metrics for the bridge.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webview_bridge"

var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Metrics holds the registry and every collector the application exports.
type Metrics struct {
	Registry *prometheus.Registry

	Bridge  BridgeMetrics
	Forward ForwardMetrics
}

// BridgeMetrics covers requests served by the loopback bridge server.
// Requests and Duration are labelled by method, status_code and path_prefix.
type BridgeMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// ForwardMetrics covers forwarded calls, whichever surface issued them.
type ForwardMetrics struct {
	Duration  *prometheus.HistogramVec // by method, failed calls included
	Responses *prometheus.CounterVec   // by method and status_code
	Failures  *prometheus.CounterVec   // by failure kind
}

// New creates a Metrics instance on a private registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: reg,
		Bridge:   newBridgeMetrics(promauto.With(reg)),
		Forward:  newForwardMetrics(promauto.With(reg)),
	}
}

func newBridgeMetrics(f promauto.Factory) BridgeMetrics {
	labels := []string{"method", "status_code", "path_prefix"}
	return BridgeMetrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Bridge server requests.",
		}, labels),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Bridge server request latency in seconds.",
			Buckets:   latencyBuckets,
		}, labels),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Bridge server requests being processed.",
		}),
	}
}

func newForwardMetrics(f promauto.Factory) ForwardMetrics {
	return ForwardMetrics{
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "duration_seconds",
			Help:      "Forwarded call latency in seconds.",
			Buckets:   latencyBuckets,
		}, []string{"method"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "responses_total",
			Help:      "Upstream responses to forwarded calls.",
		}, []string{"method", "status_code"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "failures_total",
			Help:      "Forwarded calls that failed, by kind.",
		}, []string{"kind"}),
	}
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes lists the allowed path label values (bounded cardinality).
var knownPrefixes = []string{"/bridge", "/healthz", "/metrics"}

// NormalizePath returns a bounded path label for Prometheus metrics.
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
