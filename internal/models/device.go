// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"time"
)

// Screen is the minimal shape of a display screen the delivery subsystem
// consumes. The row is owned by the surrounding CMS; only liveness fields
// are written here (heartbeat ingest).
type Screen struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	Name           string                 `json:"name,omitempty"`
	LastSeenAt     *time.Time             `json:"last_seen_at,omitempty"`
	LastHeartbeat  map[string]interface{} `json:"last_heartbeat,omitempty"`
}

// Device is a physical player paired to a screen. DeviceID is an alias:
// all internal addressing uses ScreenID, resolved once at ingress.
type Device struct {
	ID       string     `json:"id"`
	ScreenID string     `json:"screen_id"`
	PairedAt *time.Time `json:"paired_at,omitempty"`
}

// PairingCodeLength is the length of generated pairing codes. Codes are
// drawn from uppercase A-Z and 0-9.
const PairingCodeLength = 6

// DevicePairing is a short-lived pairing code a factory-fresh device shows
// on screen. An admin claims the code for a screen; the device polls until
// the claim lands and then receives its token.
type DevicePairing struct {
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	ScreenID  string     `json:"screen_id,omitempty"`
	DeviceID  string     `json:"device_id,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// Claimed reports whether an admin has attached the code to a screen.
func (p *DevicePairing) Claimed() bool {
	return p.ClaimedAt != nil
}

// Expired reports whether the code is past its validity window at now.
func (p *DevicePairing) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Heartbeat is the device-reported liveness payload. SystemInfo is opaque
// to the subsystem and stored as-is for dashboard display.
type Heartbeat struct {
	Status     string                 `json:"status,omitempty"`
	SystemInfo map[string]interface{} `json:"system_info,omitempty"`
}

// HeartbeatResponse tells the device when to come back and whether a
// content sync is worthwhile (undelivered work exists).
type HeartbeatResponse struct {
	PollingIntervalSeconds int  `json:"polling_interval_seconds"`
	SyncRecommended        bool `json:"sync_recommended"`
}
