package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks API requests.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheTotal      *prometheus.CounterVec
}

// NewHTTPMetrics creates the collectors and registers them with registry.
func NewHTTPMetrics(registry prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_http_requests_total",
				Help: "HTTP requests partitioned by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sherpa_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sherpa_http_cache_total",
				Help: "Synthesis response cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.RequestsTotal, m.RequestDuration, m.CacheTotal} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register http metrics: %w", err)
		}
	}
	return m, nil
}

// RecordRequest records one finished request.
func (m *HTTPMetrics) RecordRequest(method, route string, code int, seconds float64) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordCache records a cache "hit" or "miss".
func (m *HTTPMetrics) RecordCache(result string) {
	m.CacheTotal.WithLabelValues(result).Inc()
}
