package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	TransportIPC  = "ipc"
	TransportHTTP = "http"

	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeStale   = "stale"
	OutcomeInvalid = "invalid"
)

// Metrics are the completion counters exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	results  prometheus.Histogram
}

// NewMetrics registers the completion metrics on a fresh registry, along
// with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemserve",
			Name:      "completion_requests_total",
			Help:      "Completion requests by transport and outcome",
		}, []string{"transport", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itemserve",
			Name:      "completion_duration_seconds",
			Help:      "Time spent answering completion requests",
			Buckets:   prometheus.ExponentialBuckets(0.000005, 4, 10),
		}, []string{"transport"}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "itemserve",
			Name:      "completion_results",
			Help:      "Number of suggestions returned per request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}

// Observe records one answered request. A nil Metrics ignores it.
func (m *Metrics) Observe(transport, outcome string, elapsed time.Duration, count int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(transport, outcome).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	m.latency.WithLabelValues(transport).Observe(elapsed.Seconds())
	m.results.Observe(float64(count))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcomeFor(count int, stale bool) string {
	switch {
	case stale:
		return OutcomeStale
	case count == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}
