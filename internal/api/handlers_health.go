// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"net/http"
	"time"

	"github.com/callboardhq/callboard/internal/models"
)

// Health handles health check requests
//
// @Summary Get subsystem health status
// @Description Returns database connectivity, wake-up feed connectivity, the number of live delivery channels, and uptime. Only the database gates degraded; devices fall back to polling when the feed is down.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	feedConnected := false
	if h.feedUp != nil {
		feedConnected = h.feedUp()
	}

	// The store is the only hard dependency. A dead feed degrades
	// latency, not correctness, so it never flips the status.
	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	activeChannels := 0
	if h.registry != nil {
		activeChannels = h.registry.Count()
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           "1.0.0",
		DatabaseConnected: dbConnected,
		FeedConnected:     feedConnected,
		ActiveChannels:    activeChannels,
		UptimeSeconds:     time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
//
// @Summary Kubernetes liveness probe
// @Description Returns 200 OK if the process is alive, regardless of external dependencies.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
//
// @Summary Kubernetes readiness probe
// @Description Returns 200 OK only when the store answers a ping. The wake-up feed does not gate readiness; the poll path works without it.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"ready_to_serve":     dbConnected,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
