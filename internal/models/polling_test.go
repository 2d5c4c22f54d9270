// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"testing"
	"time"
)

func TestEmergencyExpiresAt(t *testing.T) {
	t.Run("no recorded start", func(t *testing.T) {
		cfg := &PollingConfiguration{EmergencyTimeoutHours: 2}
		if got := cfg.EmergencyExpiresAt(); !got.IsZero() {
			t.Fatalf("EmergencyExpiresAt() = %v, want zero", got)
		}
	})

	t.Run("start plus timeout", func(t *testing.T) {
		started := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		cfg := &PollingConfiguration{
			EmergencyStartedAt:    &started,
			EmergencyTimeoutHours: 2,
		}
		want := started.Add(2 * time.Hour)
		if got := cfg.EmergencyExpiresAt(); !got.Equal(want) {
			t.Fatalf("EmergencyExpiresAt() = %v, want %v", got, want)
		}
	})
}

func TestEmergencyActiveAt(t *testing.T) {
	started := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  PollingConfiguration
		now  time.Time
		want bool
	}{
		{
			name: "inside window",
			cfg: PollingConfiguration{
				EmergencyOverride:     true,
				EmergencyStartedAt:    &started,
				EmergencyTimeoutHours: 2,
			},
			now:  started.Add(time.Hour),
			want: true,
		},
		{
			// The stored flag survives past the deadline until the next
			// write touches the row; reads must not honor it.
			name: "stale flag past window",
			cfg: PollingConfiguration{
				EmergencyOverride:     true,
				EmergencyStartedAt:    &started,
				EmergencyTimeoutHours: 2,
			},
			now:  started.Add(3 * time.Hour),
			want: false,
		},
		{
			name: "flag set without start",
			cfg: PollingConfiguration{
				EmergencyOverride:     true,
				EmergencyTimeoutHours: 2,
			},
			now:  started,
			want: false,
		},
		{
			name: "flag off",
			cfg: PollingConfiguration{
				EmergencyStartedAt:    &started,
				EmergencyTimeoutHours: 2,
			},
			now:  started.Add(time.Hour),
			want: false,
		},
		{
			name: "exactly at deadline",
			cfg: PollingConfiguration{
				EmergencyOverride:     true,
				EmergencyStartedAt:    &started,
				EmergencyTimeoutHours: 2,
			},
			now:  started.Add(2 * time.Hour),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.EmergencyActiveAt(tt.now); got != tt.want {
				t.Fatalf("EmergencyActiveAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
