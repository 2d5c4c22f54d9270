// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package polling computes how often a device should poll and manages the
// per-tenant schedule that drives the answer.
//
// The core is EffectiveInterval, a pure function from (configuration,
// instant) to seconds. Everything time-dependent takes the instant as an
// argument, so the resolution order — emergency override, then the first
// matching time period, then the default — is testable without a clock.
package polling

import (
	"strconv"
	"strings"
	"time"

	"github.com/callboardhq/callboard/internal/models"
)

// EffectiveInterval resolves the polling interval in seconds for a tenant
// at the given instant.
//
// Resolution order:
//  1. nil configuration -> the 300s default (an unconfigured tenant must
//     never halt a client).
//  2. Active, unexpired emergency override -> the emergency interval. An
//     override past its window is ignored here (lazy expiry); the stored
//     flag is cleared by the next write-path touch, not by reads.
//  3. The first period containing the tenant-local wall-clock time, in
//     configured order. A period is [start, end); end before start wraps
//     past midnight.
//  4. No match -> the 300s default.
//
// Results are clamped to the [5, 3600]s bounds regardless of what the
// stored configuration says.
func EffectiveInterval(cfg *models.PollingConfiguration, now time.Time) int {
	if cfg == nil {
		return models.DefaultPollingIntervalSeconds
	}

	if cfg.EmergencyActiveAt(now) {
		return clampInterval(cfg.EmergencyIntervalSeconds)
	}

	local := now.In(tenantLocation(cfg.Timezone))
	minute := local.Hour()*60 + local.Minute()

	for _, p := range cfg.TimePeriods {
		if periodContains(p, minute) {
			return clampInterval(p.IntervalSeconds)
		}
	}

	return models.DefaultPollingIntervalSeconds
}

// tenantLocation loads the tenant timezone, falling back to UTC when the
// stored name does not resolve. Write-path validation keeps bad names out;
// the read path degrades instead of erroring.
func tenantLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// periodContains reports whether the minute-of-day falls inside the
// period's [start, end) window, honoring wrap-around. Malformed or empty
// (start == end) periods never match.
func periodContains(p models.TimePeriod, minute int) bool {
	start, ok := parseClock(p.Start)
	if !ok {
		return false
	}
	end, ok := parseClock(p.End)
	if !ok {
		return false
	}

	switch {
	case start == end:
		return false
	case start < end:
		return minute >= start && minute < end
	default: // wraps past midnight, e.g. 22:00-06:00
		return minute >= start || minute < end
	}
}

// parseClock converts an "HH:MM" wall-clock string to minutes since
// midnight. 24:00 is not a valid time of day.
func parseClock(s string) (int, bool) {
	h, m, ok := splitClock(s)
	if !ok {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func splitClock(s string) (h, m int, ok bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(s[i+1:])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

// clampInterval bounds a stored interval to the permitted range.
func clampInterval(seconds int) int {
	if seconds < models.MinPollingIntervalSeconds {
		return models.MinPollingIntervalSeconds
	}
	if seconds > models.MaxPollingIntervalSeconds {
		return models.MaxPollingIntervalSeconds
	}
	return seconds
}
