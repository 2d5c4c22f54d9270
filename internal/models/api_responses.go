// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"time"
)

// APIResponse is the standardized wrapper used by all HTTP endpoints.
//
// Status is "success" or "error"; Error is populated only for errors.
// Metadata carries timing for observability.
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "command_type must be one of the supported types",
//	    "details": {"field": "command_type"}
//	  },
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the structured error body.
//
// Codes map the subsystem error taxonomy onto the wire:
//   - VALIDATION_ERROR: bad enum or field (400)
//   - NOT_FOUND: unknown command/screen/code (404)
//   - AUTHENTICATION_ERROR: bad or missing credential (401)
//   - AUTHORIZATION_ERROR: insufficient role (403)
//   - INVALID_TRANSITION: state machine violation, a client bug (409)
//   - STORE_ERROR: transient store failure, retry with backoff (503)
//   - RATE_LIMIT_EXCEEDED: too many requests (429)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EnqueueCommandResponse is returned by POST /commands.
type EnqueueCommandResponse struct {
	CommandID string        `json:"command_id"`
	Status    CommandStatus `json:"status"`
}

// CommandListResponse is the body of GET /commands.
type CommandListResponse struct {
	Commands []Command `json:"commands"`
	Count    int       `json:"count"`
}

// CommandStatusResponse acknowledges a lifecycle report.
type CommandStatusResponse struct {
	CommandID string        `json:"command_id"`
	Status    CommandStatus `json:"status"`
}

// PollResponse is the body of GET /notifications/poll: the undelivered
// backlog this call claimed, the device's pending commands, and the
// scheduler-recommended next poll interval.
type PollResponse struct {
	Notifications          []Notification `json:"notifications"`
	Commands               []Command      `json:"commands"`
	PollingIntervalSeconds int            `json:"polling_interval_seconds"`
}

// PairingCodeResponse is returned when a device requests a pairing code.
type PairingCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PairingResultResponse is returned by check-pairing once an admin has
// claimed the code for a screen.
type PairingResultResponse struct {
	DeviceToken string `json:"device_token"`
	DeviceID    string `json:"device_id"`
	ScreenID    string `json:"screen_id"`
}

// HealthStatus is the health endpoint payload. FeedConnected reports the
// NATS wake-up feed; false degrades latency, not correctness, so it never
// flips Status to degraded on its own.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	FeedConnected     bool    `json:"feed_connected"`
	ActiveChannels    int     `json:"active_channels"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}
