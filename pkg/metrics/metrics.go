// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MessagesTotal tracks persisted messages by kind.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total messages persisted",
		},
		[]string{"kind"},
	)

	// ChannelsPublished tracks delivery channel publishes by channel class.
	ChannelsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_channels_published_total",
			Help: "Total publishes to delivery channels",
		},
		[]string{"class"},
	)

	// DeliveryFailures tracks per-channel publish failures after a
	// successful durable write.
	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_delivery_failures_total",
			Help: "Channel publishes that failed after persistence",
		},
		[]string{"class"},
	)

	// TypingEventsTotal tracks routed typing indicators.
	TypingEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_typing_events_total",
			Help: "Total typing events routed",
		},
	)

	// ReadReceiptsTotal tracks routed read receipts.
	ReadReceiptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_receipts_total",
			Help: "Total read receipts routed",
		},
	)

	// SSEConnectionsActive tracks active SSE subscriber connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// PresenceOnline tracks participants currently marked online.
	PresenceOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_presence_online",
			Help: "Participants currently online",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
