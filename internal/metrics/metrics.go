package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordWebhookEvent(eventType, outcome string)
	RecordUpstreamCall(service, status string, duration time.Duration)
	RecordDigestRun(platform, status string, duration time.Duration)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordWebhookEvent(eventType, outcome string)                      {}
func (m *NoOpMetrics) RecordUpstreamCall(service, status string, duration time.Duration) {}
func (m *NoOpMetrics) RecordDigestRun(platform, status string, duration time.Duration)   {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                            {}
func (m *NoOpMetrics) Handler() http.Handler                                             { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init installs a metrics backend; nil restores the no-op default
func Init(m Metrics) {
	if m == nil {
		m = &NoOpMetrics{}
	}
	globalMetrics = m
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordWebhookEvent records one processed webhook event
func RecordWebhookEvent(eventType, outcome string) {
	globalMetrics.RecordWebhookEvent(eventType, outcome)
}

// RecordUpstreamCall records an outbound call to weather, feed or chat APIs
func RecordUpstreamCall(service, status string, duration time.Duration) {
	globalMetrics.RecordUpstreamCall(service, status, duration)
}

// RecordDigestRun records a digest publication attempt
func RecordDigestRun(platform, status string, duration time.Duration) {
	globalMetrics.RecordDigestRun(platform, status, duration)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}
