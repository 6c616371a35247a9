package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Chat metrics
	ChatRequests       prometheus.Counter
	ChatRequestLatency prometheus.Histogram
	ChatResponses      *prometheus.CounterVec
	ChatErrors         *prometheus.CounterVec

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderFallback *prometheus.CounterVec
	ImagesAnalyzed   prometheus.Counter
	ImagesRejected   prometheus.Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics registers the Prometheus metrics once per process and returns them
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ChatRequests: promauto.NewCounter(prometheus.CounterOpts{
				Name: "lexassist_chat_requests_total",
				Help: "Total number of chat requests processed",
			}),

			// Up to 5 minutes: a cold local model can be slow
			ChatRequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "lexassist_chat_request_duration_seconds",
				Help:    "Chat request latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			}),

			ChatResponses: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lexassist_chat_responses_total",
				Help: "Chat responses by HTTP status code",
			}, []string{"status"}),

			ChatErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lexassist_chat_errors_total",
				Help: "Total number of chat errors by type",
			}, []string{"error_type"}),

			ProviderCalls: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lexassist_provider_calls_total",
				Help: "Provider calls by provider, operation and result",
			}, []string{"provider", "operation", "result"}),

			ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "lexassist_provider_call_duration_seconds",
				Help:    "Provider call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			}, []string{"provider", "operation"}),

			ProviderFallback: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "lexassist_provider_fallbacks_total",
				Help: "Fallbacks from an unavailable provider to its alternate",
			}, []string{"from", "to"}),

			ImagesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "lexassist_images_analyzed_total",
				Help: "Images sent to the vision model",
			}),

			ImagesRejected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "lexassist_images_rejected_total",
				Help: "Uploaded images dropped for an unsupported format",
			}),
		}
	})
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordChatRequest increments the chat request counter
func (m *Metrics) RecordChatRequest() {
	if m != nil {
		m.ChatRequests.Inc()
	}
}

// RecordChatLatency records chat request latency
func (m *Metrics) RecordChatLatency(seconds float64) {
	if m != nil {
		m.ChatRequestLatency.Observe(seconds)
	}
}

// RecordChatResponse counts a response by status code
func (m *Metrics) RecordChatResponse(status string) {
	if m != nil {
		m.ChatResponses.WithLabelValues(status).Inc()
	}
}

// RecordChatError increments the chat error counter
func (m *Metrics) RecordChatError(errorType string) {
	if m != nil {
		m.ChatErrors.WithLabelValues(errorType).Inc()
	}
}

// RecordProviderCall records the outcome and latency of one provider call
func (m *Metrics) RecordProviderCall(provider, operation string, success bool, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.ProviderCalls.WithLabelValues(provider, operation, result).Inc()
	m.ProviderLatency.WithLabelValues(provider, operation).Observe(seconds)
}

// RecordFallback counts a provider fallback
func (m *Metrics) RecordFallback(from, to string) {
	if m != nil {
		m.ProviderFallback.WithLabelValues(from, to).Inc()
	}
}

// RecordImages counts analyzed and rejected images
func (m *Metrics) RecordImages(analyzed, rejected int) {
	if m == nil {
		return
	}
	m.ImagesAnalyzed.Add(float64(analyzed))
	m.ImagesRejected.Add(float64(rejected))
}
