// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"time"
)

// Polling interval bounds in seconds. Periods outside this range are
// rejected at configuration time.
const (
	MinPollingIntervalSeconds = 5
	MaxPollingIntervalSeconds = 3600

	// DefaultPollingIntervalSeconds is returned when no time period matches
	// the current wall-clock time. A configuration gap must never halt a
	// client, so the scheduler falls back instead of erroring.
	DefaultPollingIntervalSeconds = 300
)

// TimePeriod is one named window of a tenant's polling day.
//
// Start and End are "HH:MM" wall-clock strings in the tenant timezone. A
// period matches times in [Start, End); End < Start denotes a window that
// wraps past midnight (e.g. 22:00-06:00).
type TimePeriod struct {
	Name            string `json:"name"`
	Start           string `json:"start"`
	End             string `json:"end"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// PollingConfiguration is the per-tenant polling cadence schedule.
//
// While EmergencyOverride is active the effective interval is always
// EmergencyIntervalSeconds, until EmergencyStartedAt plus
// EmergencyTimeoutHours elapses. Expiry is lazy: reads past the deadline
// ignore the stored flag, and the next write-path touch clears it.
type PollingConfiguration struct {
	OrganizationID           string       `json:"organization_id"`
	Timezone                 string       `json:"timezone"`
	TimePeriods              []TimePeriod `json:"time_periods"`
	EmergencyOverride        bool         `json:"emergency_override"`
	EmergencyIntervalSeconds int          `json:"emergency_interval_seconds"`
	EmergencyTimeoutHours    int          `json:"emergency_timeout_hours"`
	EmergencyStartedAt       *time.Time   `json:"emergency_started_at,omitempty"`
	UpdatedAt                time.Time    `json:"updated_at"`
}

// EmergencyExpiresAt returns the instant the active override lapses, or the
// zero time when no override is recorded.
func (c *PollingConfiguration) EmergencyExpiresAt() time.Time {
	if c.EmergencyStartedAt == nil {
		return time.Time{}
	}
	return c.EmergencyStartedAt.Add(time.Duration(c.EmergencyTimeoutHours) * time.Hour)
}

// EmergencyActiveAt reports whether the override should be honored at now,
// applying the lazy-expiry rule to the stored flag.
func (c *PollingConfiguration) EmergencyActiveAt(now time.Time) bool {
	if !c.EmergencyOverride || c.EmergencyStartedAt == nil {
		return false
	}
	return now.Before(c.EmergencyExpiresAt())
}

// EmergencyState is the admin-facing view of the override, with the
// computed window so UIs can render a countdown.
type EmergencyState struct {
	Active           bool       `json:"active"`
	IntervalSeconds  int        `json:"interval_seconds,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}
