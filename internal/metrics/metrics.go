// Package metrics exposes Prometheus collectors for the ledger and HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snapedit"

// Recorder owns a registry and its collectors. A nil *Recorder records nothing.
type Recorder struct {
	Registry *prometheus.Registry

	ledgerOps    *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	credits      *prometheus.CounterVec
	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		ledgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "balance_mutations_total",
				Help:      "Number of balance mutations written.",
			},
			[]string{"type"},
		),
		credits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "credits_total",
				Help:      "Sum of credited and debited amounts.",
			},
			[]string{"type"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),
	}

	r.Registry.MustRegister(
		r.ledgerOps,
		r.mutations,
		r.credits,
		r.httpInFlight,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// LedgerOp counts one ledger operation. outcome is "success" or an error kind.
func (r *Recorder) LedgerOp(operation, outcome string) {
	if r == nil {
		return
	}
	r.ledgerOps.WithLabelValues(operation, outcome).Inc()
}

// BalanceMutation counts a written transaction record of the given type.
func (r *Recorder) BalanceMutation(txType string, amount float64) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(txType).Inc()
	r.credits.WithLabelValues(txType).Add(amount)
}

// RequestStarted tracks an in-flight request; call the returned func when done.
func (r *Recorder) RequestStarted() func() {
	if r == nil {
		return func() {}
	}
	r.httpInFlight.Inc()
	return r.httpInFlight.Dec
}

// HTTPRequest records a completed request. path should be a route pattern.
func (r *Recorder) HTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
