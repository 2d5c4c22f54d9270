// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for Prometheus metrics
instrumentation, gzip compression, and an in-memory performance window.
Router-level middleware (CORS, rate limiting, security headers, request
IDs) lives in internal/api next to the chi router; the components here
are plain func(http.HandlerFunc) http.HandlerFunc wrappers the router
adapts per route group.

Key Components:

  - Prometheus Metrics: request/response instrumentation labeled by chi
    route pattern
  - Compression: gzip for JSON responses; event streams and WebSocket
    upgrades pass through untouched
  - Performance Monitor: bounded sliding window with percentile stats for
    the admin performance snapshot

Usage Example - Performance Monitoring:

	perfMon := middleware.NewPerformanceMonitor(1000, time.Second)
	r.Get("/api/v1/notifications/poll", asChi(perfMon.Middleware(handler)))

	// Snapshot for the admin endpoint
	stats := perfMon.Stats()

Stream Handling:

The delivery SSE endpoint must not be wrapped in Compression (gzip
buffering would hold back events between flushes) or in the performance
monitor (an open session is not a slow request). The metrics wrapper is
stream-safe: it forwards Flush to the underlying writer.

Thread Safety:

All middleware components are thread-safe:
  - Compression uses pooled per-request gzip writers
  - Performance monitor uses sync.RWMutex
  - Prometheus metrics use atomic operations

See Also:

  - internal/auth: Authentication middleware
  - internal/api: chi router, CORS, rate limiting, security headers
  - internal/metrics: Prometheus metric definitions
*/
package middleware
