// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring delivery performance, errors, and
system health.

# Overview

The package provides metrics for:
  - Command dispatch lifecycle (enqueue, transitions, timeout sweeps)
  - Notification publishing and per-channel delivery
  - SSE delivery sessions, heartbeats, and catch-up replay
  - Polling fallback traffic and effective intervals
  - Pairing and device token events
  - Database query performance (PostgreSQL)
  - NATS publish/consume
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8480/metrics

# Available Metrics

Command Metrics:
  - commands_enqueued_total: Commands accepted by the dispatcher (counter)
    Labels: command_type
  - command_transitions_total: Status transitions applied (counter)
    Labels: to_status (acknowledged, completed, failed, timed_out)
  - command_invalid_transitions_total: Transitions rejected by the
    conditional update guard (counter)
  - command_ack_latency_seconds: Enqueue-to-acknowledge latency (histogram)
  - command_sweep_runs_total / command_sweep_timed_out_total: Sweeper activity

Notification Metrics:
  - notifications_published_total: Published notifications (counter)
    Labels: notification_type
  - notifications_delivered_total: Claimed deliveries (counter)
    Labels: channel (sse, poll)
  - notification_delivery_conflicts_total: Claims lost to a concurrent
    channel (counter)

Delivery Session Metrics:
  - delivery_sessions_active: Open SSE sessions (gauge)
  - delivery_sessions_closed_total: Session closures (counter)
    Labels: reason (client_disconnect, replaced, store_failure, write_error, shutdown)
  - delivery_heartbeats_sent_total: Ping events sent (counter)
  - delivery_catchup_batch_size: Undelivered notifications replayed at
    session start (histogram)

Polling Metrics:
  - poll_requests_total: Fallback poll requests (counter)
  - poll_effective_interval_seconds: Interval returned to devices (histogram)
  - polling_emergency_overrides_active: Screens under emergency override (gauge)

Database Metrics:
  - postgres_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - postgres_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type (timeout, connection, constraint, not_found, other)
  - postgres_pool_acquired_conns / postgres_pool_total_conns: Pool state (gauges)

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/callboardhq/callboard/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordCommandEnqueued("restart")
	    metrics.RecordNotificationDelivered("sse")
	    metrics.RecordDBQuery("SELECT", "device_commands", duration, err)
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'callboard'
	    static_configs:
	      - targets: ['localhost:8480']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Command throughput
	rate(commands_enqueued_total[5m])

	# p95 acknowledge latency
	histogram_quantile(0.95, rate(command_ack_latency_seconds_bucket[5m]))

	# Delivery channel mix
	sum by (channel) (rate(notifications_delivered_total[5m]))

	# Sessions falling back to polling
	rate(poll_requests_total[5m])

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use chi route patterns, not raw URLs
  - Command and notification types are closed enums
  - Database error types are mapped to five fixed categories
  - Screen and device IDs are never used as labels

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/database: Database metrics recording
  - internal/delivery: Session metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
