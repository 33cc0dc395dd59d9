package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// SherpaMetrics tracks native handle lifecycles and compute calls.
type SherpaMetrics struct {
	OperationsTotal   *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	LiveHandles       *prometheus.GaugeVec
}

// NewSherpaMetrics creates the collectors and registers them with registry.
func NewSherpaMetrics(registry prometheus.Registerer) (*SherpaMetrics, error) {
	m := &SherpaMetrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_operations_total",
				Help: "Native engine operations partitioned by operation and status.",
			},
			[]string{"operation", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_errors_total",
				Help: "Native engine errors partitioned by operation and error type.",
			},
			[]string{"operation", "error_type"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sherpa_operation_duration_seconds",
				Help:    "Duration of native engine operations.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"operation"},
		),
		LiveHandles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sherpa_live_handles",
				Help: "Native handles currently open, by handle kind.",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.OperationsTotal, m.ErrorsTotal, m.OperationDuration, m.LiveHandles} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register sherpa metrics: %w", err)
		}
	}
	return m, nil
}

// RecordOperation implements Recorder. Successful create_* and destroy_*
// operations also move the live handle gauge.
func (m *SherpaMetrics) RecordOperation(operation, status string) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	if status != "success" {
		return
	}
	if kind, ok := strings.CutPrefix(operation, "create_"); ok {
		m.LiveHandles.WithLabelValues(kind).Inc()
	} else if kind, ok := strings.CutPrefix(operation, "destroy_"); ok {
		m.LiveHandles.WithLabelValues(kind).Dec()
	}
}

// RecordDuration implements Recorder.
func (m *SherpaMetrics) RecordDuration(operation string, seconds float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *SherpaMetrics) RecordError(operation, errorType string) {
	m.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}
