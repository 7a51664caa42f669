package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus collectors. A single instance is
// constructed at startup and threaded into pkg/httpserver and pkg/xds so
// request handling and control-plane updates record against the same
// registry that cmd/yarhs exposes on the API listener's "/metrics" route.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ActiveConns      prometheus.Gauge
	XDSUpdatesTotal  *prometheus.CounterVec
	ListenerSwaps    prometheus.Counter
}

// NewMetrics registers and returns the collector set against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yarhs",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served, by method and status class.",
		}, []string{"method", "status_class"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "yarhs",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ActiveConns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "yarhs",
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests on the data-plane listener.",
		}),
		XDSUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yarhs",
			Name:      "xds_updates_total",
			Help:      "Control-plane discovery POSTs, by resource type and outcome (ack|nack).",
		}, []string{"resource_type", "outcome"}),
		ListenerSwaps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "yarhs",
			Name:      "listener_swaps_total",
			Help:      "Zero-downtime listener hot-restarts performed.",
		}),
	}
}

// StatusClass buckets an HTTP status code into "2xx", "4xx", etc. for the
// requests_total label, keeping cardinality bounded regardless of how many
// distinct status codes a deployment actually returns.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
