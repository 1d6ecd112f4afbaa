// Package observability holds the Prometheus collectors and OpenTelemetry setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationshipToggles counts toggle outcomes by relationship kind.
	RelationshipToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_relationship_toggles_total",
		Help: "Toggle operations by relationship kind and outcome",
	}, []string{"kind", "outcome"})

	// CascadeRowsDeleted counts rows removed by each cascade step kind.
	CascadeRowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_cascade_rows_deleted_total",
		Help: "Rows deleted or detached by cascade step kind",
	}, []string{"step"})

	// CascadeDuration records how long a full cascade transaction took.
	CascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "noctua_cascade_duration_seconds",
		Help:    "Duration of cascade deletions by root entity",
		Buckets: prometheus.DefBuckets,
	}, []string{"root", "result"})

	// NotificationEvents counts fan-out events by action.
	NotificationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_notification_events_total",
		Help: "Notification fan-out events by action",
	}, []string{"action"})

	// ModerationActions counts admin moderation actions.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_moderation_actions_total",
		Help: "Moderation actions by type and result",
	}, []string{"action", "result"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheResults counts cache lookups by key family and result.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_cache_results_total",
		Help: "Cache lookups by key family and hit/miss",
	}, []string{"family", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "noctua_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "noctua_websocket_connections",
		Help: "Number of open notification WebSocket connections",
	})

	// WebSocketDrops counts messages dropped because a client buffer was full or closed.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noctua_websocket_drops_total",
		Help: "Notification messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveCascade records the duration of a cascade for root since start.
func ObserveCascade(root string, start time.Time, err error) {
	result := "committed"
	if err != nil {
		result = "rolled_back"
	}
	CascadeDuration.WithLabelValues(root, result).Observe(time.Since(start).Seconds())
}
