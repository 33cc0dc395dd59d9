package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MQTTMetrics tracks tag event publishing.
type MQTTMetrics struct {
	MessagesTotal  *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// NewMQTTMetrics creates the collectors and registers them with registry.
func NewMQTTMetrics(registry prometheus.Registerer) (*MQTTMetrics, error) {
	m := &MQTTMetrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_mqtt_messages_total",
				Help: "MQTT operations by status.",
			},
			[]string{"operation", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_mqtt_errors_total",
				Help: "MQTT errors by type.",
			},
			[]string{"operation", "error_type"},
		),
		PublishLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sherpa_mqtt_publish_duration_seconds",
				Help:    "Time until the broker acknowledged a publish.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.MessagesTotal, m.ErrorsTotal, m.PublishLatency} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register mqtt metrics: %w", err)
		}
	}
	return m, nil
}

func (m *MQTTMetrics) RecordOperation(operation, status string) {
	m.MessagesTotal.WithLabelValues(operation, status).Inc()
}

func (m *MQTTMetrics) RecordDuration(operation string, seconds float64) {
	m.PublishLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *MQTTMetrics) RecordError(operation, errorType string) {
	m.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}
