package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qqmusicmcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCallDuration *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qqmusic_tool_call_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"tool", "status"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qqmusic_upstream_request_duration_seconds",
				Help:    "Duration of upstream API requests in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint", "status"},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qqmusic_upstream_requests_total",
				Help: "Total number of upstream API requests",
			},
			[]string{"endpoint", "status"},
		),
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (p *PrometheusMetrics) ObserveToolCall(tool string, duration time.Duration, err error) {
	p.toolCallDuration.WithLabelValues(tool, statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveUpstreamRequest(endpoint string, duration time.Duration, err error) {
	status := statusLabel(err)
	p.upstreamRequests.WithLabelValues(endpoint, status).Inc()
	p.upstreamDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
