// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Command dispatch lifecycle (enqueue, acknowledge, complete, sweep)
// - Notification publishing and per-channel delivery
// - SSE delivery sessions and heartbeats
// - Polling fallback traffic
// - Database query performance (PostgreSQL)
// - NATS publish/consume

var (
	// Command Dispatch Metrics
	CommandsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_enqueued_total",
			Help: "Total number of commands enqueued",
		},
		[]string{"command_type"},
	)

	CommandTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_transitions_total",
			Help: "Total number of command status transitions",
		},
		[]string{"to_status"}, // "acknowledged", "completed", "failed", "timed_out"
	)

	CommandInvalidTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_invalid_transitions_total",
			Help: "Total number of rejected command status transitions",
		},
		[]string{"to_status"},
	)

	CommandAckLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "command_ack_latency_seconds",
			Help:    "Time between command enqueue and device acknowledgment",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SweepRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "command_sweep_runs_total",
			Help: "Total number of timeout sweep executions",
		},
	)

	SweepCommandsTimedOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "command_sweep_timed_out_total",
			Help: "Total number of commands marked timed_out by the sweeper",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "command_sweep_duration_seconds",
			Help:    "Duration of timeout sweep executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notification Metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications published",
		},
		[]string{"notification_type"},
	)

	NotificationPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_publish_failures_total",
			Help: "Total number of failed notification publishes",
		},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Total number of notifications delivered to devices",
		},
		[]string{"channel"}, // "sse", "poll"
	)

	NotificationDeliveryConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_delivery_conflicts_total",
			Help: "Total number of delivery claims lost to a concurrent channel",
		},
	)

	// Delivery Session Metrics
	DeliverySessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "delivery_sessions_active",
			Help: "Current number of active SSE delivery sessions",
		},
	)

	DeliverySessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_sessions_opened_total",
			Help: "Total number of SSE delivery sessions opened",
		},
	)

	DeliverySessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_sessions_closed_total",
			Help: "Total number of SSE delivery sessions closed",
		},
		[]string{"reason"}, // "client_disconnect", "replaced", "store_failure", "write_error", "shutdown"
	)

	DeliveryHeartbeatsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_heartbeats_sent_total",
			Help: "Total number of SSE ping events sent",
		},
	)

	DeliveryWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_write_errors_total",
			Help: "Total number of failed SSE event writes",
		},
	)

	DeliveryCatchUpBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "delivery_catchup_batch_size",
			Help:    "Number of undelivered notifications replayed at session start",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Polling Fallback Metrics
	PollRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_requests_total",
			Help: "Total number of polling fallback requests",
		},
	)

	PollBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poll_batch_size",
			Help:    "Number of notifications returned per poll request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	PollEffectiveInterval = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poll_effective_interval_seconds",
			Help:    "Effective polling interval returned to devices",
			Buckets: []float64{5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	EmergencyOverridesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polling_emergency_overrides_active",
			Help: "Current number of screens with an active emergency polling override",
		},
	)

	// Pairing and Auth Metrics
	PairingCodesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairing_codes_issued_total",
			Help: "Total number of pairing codes issued",
		},
	)

	PairingClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairing_claims_total",
			Help: "Total number of pairing claim attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	DeviceTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "device_tokens_issued_total",
			Help: "Total number of device tokens issued",
		},
	)

	DeviceTokensRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_tokens_rejected_total",
			Help: "Total number of rejected device tokens",
		},
		[]string{"reason"}, // "expired", "invalid", "screen_mismatch", "revoked"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postgres_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postgres_query_errors_total",
			Help: "Total number of PostgreSQL query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBPoolAcquiredConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postgres_pool_acquired_conns",
			Help: "Current number of acquired connections in the pool",
		},
	)

	DBPoolTotalConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postgres_pool_total_conns",
			Help: "Current total number of connections in the pool",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// NATS Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publish_failures_total",
			Help: "Total number of failed NATS publishes",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of consumed messages that failed to parse",
		},
	)

	NATSReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_reconnects_total",
			Help: "Total number of NATS client reconnects",
		},
	)

	// WebSocket Metrics (admin event hub)
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordCommandEnqueued records a command accepted by the dispatcher.
func RecordCommandEnqueued(commandType string) {
	CommandsEnqueued.WithLabelValues(commandType).Inc()
}

// RecordCommandTransition records a successful command status transition.
func RecordCommandTransition(toStatus string) {
	CommandTransitions.WithLabelValues(toStatus).Inc()
}

// RecordCommandInvalidTransition records a transition rejected by the
// conditional update guard.
func RecordCommandInvalidTransition(toStatus string) {
	CommandInvalidTransitions.WithLabelValues(toStatus).Inc()
}

// RecordCommandAcknowledged records an acknowledgment and its latency
// relative to enqueue time.
func RecordCommandAcknowledged(enqueuedAt time.Time) {
	CommandTransitions.WithLabelValues("acknowledged").Inc()
	CommandAckLatency.Observe(time.Since(enqueuedAt).Seconds())
}

// RecordSweep records a timeout sweep execution.
func RecordSweep(duration time.Duration, timedOut int64) {
	SweepRuns.Inc()
	SweepDuration.Observe(duration.Seconds())
	if timedOut > 0 {
		SweepCommandsTimedOut.Add(float64(timedOut))
		CommandTransitions.WithLabelValues("timed_out").Add(float64(timedOut))
	}
}

// RecordNotificationPublished records a notification publish and its outcome.
func RecordNotificationPublished(notificationType string, err error) {
	if err != nil {
		NotificationPublishFailures.Inc()
		return
	}
	NotificationsPublished.WithLabelValues(notificationType).Inc()
}

// RecordNotificationDelivered records a successful delivery claim on the
// given channel ("sse" or "poll").
func RecordNotificationDelivered(channel string) {
	NotificationsDelivered.WithLabelValues(channel).Inc()
}

// RecordDeliveryConflict records a delivery claim lost to a concurrent channel.
func RecordDeliveryConflict() {
	NotificationDeliveryConflicts.Inc()
}

// TrackDeliverySession tracks SSE session open/close.
func TrackDeliverySession(open bool) {
	if open {
		DeliverySessionsActive.Inc()
		DeliverySessionsOpened.Inc()
	} else {
		DeliverySessionsActive.Dec()
	}
}

// RecordSessionClosed records a session close with its reason.
func RecordSessionClosed(reason string) {
	DeliverySessionsClosed.WithLabelValues(reason).Inc()
}

// RecordHeartbeat records an SSE ping event sent to a device.
func RecordHeartbeat() {
	DeliveryHeartbeatsSent.Inc()
}

// RecordDeliveryWriteError records a failed SSE event write.
func RecordDeliveryWriteError() {
	DeliveryWriteErrors.Inc()
}

// RecordCatchUp records the replay batch size at session start.
func RecordCatchUp(batchSize int) {
	DeliveryCatchUpBatchSize.Observe(float64(batchSize))
}

// RecordPollRequest records a polling fallback request, its batch size,
// and the effective interval returned to the device.
func RecordPollRequest(batchSize, intervalSeconds int) {
	PollRequests.Inc()
	PollBatchSize.Observe(float64(batchSize))
	PollEffectiveInterval.Observe(float64(intervalSeconds))
}

// RecordPairingClaim records a pairing claim attempt.
func RecordPairingClaim(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	PairingClaims.WithLabelValues(result).Inc()
}

// RecordTokenRejected records a rejected device token by reason.
func RecordTokenRejected(reason string) {
	DeviceTokensRejected.WithLabelValues(reason).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, categorizeDBError(err)).Inc()
	}
}

// categorizeDBError maps query errors to a small closed label set to keep
// metric cardinality bounded.
func categorizeDBError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "closed pool"):
		return "connection"
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "constraint"):
		return "constraint"
	case strings.Contains(msg, "no rows"):
		return "not_found"
	default:
		return "other"
	}
}

// UpdateDBPoolStats updates the connection pool gauges.
func UpdateDBPoolStats(acquired, total int32) {
	DBPoolAcquiredConns.Set(float64(acquired))
	DBPoolTotalConns.Set(float64(total))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordNATSPublish records a NATS publish and its outcome.
func RecordNATSPublish(err error) {
	if err != nil {
		NATSPublishFailures.Inc()
		return
	}
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message consumed from NATS.
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSParseFailed records a consumed message that failed to parse.
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSReconnect records a NATS client reconnect.
func RecordNATSReconnect() {
	NATSReconnects.Inc()
}

// SetBreakerState sets the state gauge for a named circuit breaker
// (0=closed, 1=half-open, 2=open).
func SetBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordBreakerTransition records a circuit breaker state transition.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordBreakerRequest records a request outcome through a named breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
