// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/callboardhq/callboard/internal/logging"
)

// RequestSample is a single observed request for the sliding window.
type RequestSample struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// PerformanceMonitor keeps a bounded in-memory window of request timings
// for the admin performance snapshot. Long-horizon aggregates live in
// Prometheus; this window answers "what is slow right now" without a
// metrics backend.
type PerformanceMonitor struct {
	mu              sync.RWMutex
	samples         []RequestSample
	maxSamples      int
	slowThresholdMS int64
}

// EndpointStats contains aggregated statistics for one route.
type EndpointStats struct {
	Route        string  `json:"route"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// NewPerformanceMonitor creates a monitor holding at most maxSamples
// recent requests. Requests slower than slowThreshold are logged.
func NewPerformanceMonitor(maxSamples int, slowThreshold time.Duration) *PerformanceMonitor {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &PerformanceMonitor{
		samples:         make([]RequestSample, 0, maxSamples),
		maxSamples:      maxSamples,
		slowThresholdMS: slowThreshold.Milliseconds(),
	}
}

// Record adds a sample to the sliding window.
func (pm *PerformanceMonitor) Record(sample RequestSample) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.samples = append(pm.samples, sample)
	if len(pm.samples) > pm.maxSamples {
		pm.samples = pm.samples[1:]
	}
}

// Stats returns aggregated statistics per route, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	byRoute := make(map[string][]RequestSample)
	for _, s := range pm.samples {
		key := s.Method + " " + s.Route
		byRoute[key] = append(byRoute[key], s)
	}

	stats := make([]EndpointStats, 0, len(byRoute))
	for route, samples := range byRoute {
		durations := make([]int64, len(samples))
		var sum, errorCount int64
		for i, s := range samples {
			durations[i] = s.DurationMS
			sum += s.DurationMS
			if s.StatusCode >= http.StatusInternalServerError {
				errorCount++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		stats = append(stats, EndpointStats{
			Route:        route,
			RequestCount: int64(len(durations)),
			ErrorCount:   errorCount,
			AvgDuration:  float64(sum) / float64(len(durations)),
			P50Duration:  percentile(durations, 0.50),
			P95Duration:  percentile(durations, 0.95),
			P99Duration:  percentile(durations, 0.99),
			MinDuration:  durations[0],
			MaxDuration:  durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].RequestCount > stats[j].RequestCount
	})

	return stats
}

// Recent returns the most recent n samples, oldest first.
func (pm *PerformanceMonitor) Recent(n int) []RequestSample {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if n > len(pm.samples) {
		n = len(pm.samples)
	}

	recent := make([]RequestSample, n)
	copy(recent, pm.samples[len(pm.samples)-n:])
	return recent
}

// Middleware wraps a handler to record request timings. SSE stream
// routes should not be wrapped: an open session would count as one
// very slow request.
func (pm *PerformanceMonitor) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapper, r)

		duration := time.Since(start).Milliseconds()

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		pm.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: duration,
			StatusCode: wrapper.statusCode,
			Timestamp:  time.Now(),
		})

		if duration > pm.slowThresholdMS {
			logging.Warn().
				Str("method", r.Method).
				Str("route", route).
				Int64("duration_ms", duration).
				Int64("threshold_ms", pm.slowThresholdMS).
				Msg("Slow request detected")
		}
	}
}

// percentile calculates the percentile value from a sorted slice
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
