// Package observability wires the Prometheus registry and exposes it over HTTP.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/sherpa-go/internal/observability/metrics"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Sherpa   *metrics.SherpaMetrics
	HTTP     *metrics.HTTPMetrics
	MQTT     *metrics.MQTTMetrics
}

// NewMetrics creates a registry with every collector and installs the sherpa
// recorder.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sherpaMetrics, err := metrics.NewSherpaMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create sherpa metrics: %w", err)
	}
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	mqttMetrics, err := metrics.NewMQTTMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create MQTT metrics: %w", err)
	}

	sherpa.SetMetrics(sherpaMetrics)

	return &Metrics{
		registry: registry,
		Sherpa:   sherpaMetrics,
		HTTP:     httpMetrics,
		MQTT:     mqttMetrics,
	}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
