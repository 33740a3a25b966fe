// Package metrics holds the Prometheus collectors of the resolution pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Cross-provider outcome label values.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeMemo      = "memo"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	CrossProviderTotal   *prometheus.CounterVec
	DelegateCallsTotal   *prometheus.CounterVec
	DegradedTotal        *prometheus.CounterVec
}

// New creates the collectors under namespace and registers them with reg.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ProviderCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of catalog and lyrics calls",
			},
			[]string{"provider", "operation", "status"},
		),
		ProviderCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Time spent in catalog and lyrics calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
		CrossProviderTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cross_provider_total",
				Help:      "Cross-provider lookups by outcome",
			},
			[]string{"outcome"},
		),
		DelegateCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delegate_calls_total",
				Help:      "Stream delegate invocations",
			},
			[]string{"mode", "status"},
		),
		DegradedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_total",
				Help:      "Best-effort operations that swallowed a failure",
			},
			[]string{"operation"},
		),
	}

	collectors := []prometheus.Collector{
		m.ProviderCallsTotal,
		m.ProviderCallDuration,
		m.CrossProviderTotal,
		m.DelegateCallsTotal,
		m.DegradedTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveProviderCall counts one call and records its latency.
func (m *Metrics) ObserveProviderCall(provider, operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(provider, operation, status).Inc()
	m.ProviderCallDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// RecordCrossProvider counts a cross-provider lookup outcome.
func (m *Metrics) RecordCrossProvider(outcome string) {
	if m == nil {
		return
	}
	m.CrossProviderTotal.WithLabelValues(outcome).Inc()
}

// RecordDelegateCall counts a delegate invocation for mode (url, stream, download).
func (m *Metrics) RecordDelegateCall(mode string, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.DelegateCallsTotal.WithLabelValues(mode, status).Inc()
}

// RecordDegraded counts a failure that a best-effort operation swallowed.
func (m *Metrics) RecordDegraded(operation string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(operation).Inc()
}
