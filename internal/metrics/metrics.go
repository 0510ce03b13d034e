// Package metrics exposes prometheus collectors for the API server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	inFlight          prometheus.Gauge
	generationCalls   *prometheus.CounterVec
	rateLimitRejects  prometheus.Counter
	webhookDeliveries *prometheus.CounterVec
}

// New creates and registers the collectors on a private registry.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, path and status.",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "Requests currently being served.",
			ConstLabels: labels,
		}),
		generationCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "generation_calls_total",
			Help:        "Outbound generation-service calls by operation and outcome.",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		rateLimitRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rate_limit_rejections_total",
			Help:        "Requests rejected by the rate limiter.",
			ConstLabels: labels,
		}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_deliveries_total",
			Help:        "Webhook notification attempts by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.inFlight,
		m.generationCalls, m.rateLimitRejects, m.webhookDeliveries)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementInFlight marks a request as started.
func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }

// DecrementInFlight marks a request as finished.
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// RecordGenerationCall records an outbound generation call.
func (m *Metrics) RecordGenerationCall(operation, outcome string) {
	m.generationCalls.WithLabelValues(operation, outcome).Inc()
}

// RecordRateLimitRejection counts a 429.
func (m *Metrics) RecordRateLimitRejection() { m.rateLimitRejects.Inc() }

// RecordWebhookDelivery records a webhook attempt.
func (m *Metrics) RecordWebhookDelivery(outcome string) {
	m.webhookDeliveries.WithLabelValues(outcome).Inc()
}
