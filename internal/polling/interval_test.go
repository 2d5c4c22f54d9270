// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package polling

import (
	"testing"
	"time"

	"github.com/callboardhq/callboard/internal/models"
)

// at builds a UTC instant on a fixed date with the given wall-clock time.
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestEffectiveIntervalPeriods(t *testing.T) {
	overnight := &models.PollingConfiguration{
		OrganizationID: "org-1",
		Timezone:       "UTC",
		TimePeriods: []models.TimePeriod{
			{Name: "overnight", Start: "22:00", End: "06:00", IntervalSeconds: 1200},
		},
	}

	t.Run("wrap-around matches both sides of midnight", func(t *testing.T) {
		if got := EffectiveInterval(overnight, at(23, 30)); got != 1200 {
			t.Errorf("23:30 = %d, want 1200", got)
		}
		if got := EffectiveInterval(overnight, at(2, 0)); got != 1200 {
			t.Errorf("02:00 = %d, want 1200", got)
		}
	})

	t.Run("wrap-around excludes daytime", func(t *testing.T) {
		if got := EffectiveInterval(overnight, at(12, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("12:00 = %d, want default %d", got, models.DefaultPollingIntervalSeconds)
		}
	})

	t.Run("start is inclusive, end is exclusive", func(t *testing.T) {
		cfg := &models.PollingConfiguration{
			Timezone: "UTC",
			TimePeriods: []models.TimePeriod{
				{Name: "business", Start: "09:00", End: "18:00", IntervalSeconds: 60},
			},
		}
		if got := EffectiveInterval(cfg, at(9, 0)); got != 60 {
			t.Errorf("09:00 = %d, want 60 (start inclusive)", got)
		}
		if got := EffectiveInterval(cfg, at(18, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("18:00 = %d, want default (end exclusive)", got)
		}
		if got := EffectiveInterval(cfg, at(17, 59)); got != 60 {
			t.Errorf("17:59 = %d, want 60", got)
		}
	})

	t.Run("first matching period wins", func(t *testing.T) {
		cfg := &models.PollingConfiguration{
			Timezone: "UTC",
			TimePeriods: []models.TimePeriod{
				{Name: "morning", Start: "06:00", End: "12:00", IntervalSeconds: 120},
				{Name: "allday", Start: "00:00", End: "23:59", IntervalSeconds: 900},
			},
		}
		if got := EffectiveInterval(cfg, at(8, 0)); got != 120 {
			t.Errorf("overlap = %d, want first period's 120", got)
		}
		if got := EffectiveInterval(cfg, at(14, 0)); got != 900 {
			t.Errorf("later period = %d, want 900", got)
		}
	})

	t.Run("empty and malformed periods never match", func(t *testing.T) {
		cfg := &models.PollingConfiguration{
			Timezone: "UTC",
			TimePeriods: []models.TimePeriod{
				{Name: "empty", Start: "10:00", End: "10:00", IntervalSeconds: 60},
				{Name: "garbled", Start: "ten", End: "11:00", IntervalSeconds: 60},
			},
		}
		if got := EffectiveInterval(cfg, at(10, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("got %d, want default", got)
		}
	})

	t.Run("nil and gap configurations fall back to default", func(t *testing.T) {
		if got := EffectiveInterval(nil, at(10, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("nil config = %d, want default", got)
		}
		empty := &models.PollingConfiguration{Timezone: "UTC"}
		if got := EffectiveInterval(empty, at(10, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("no periods = %d, want default", got)
		}
	})

	t.Run("stored intervals clamp to bounds", func(t *testing.T) {
		cfg := &models.PollingConfiguration{
			Timezone: "UTC",
			TimePeriods: []models.TimePeriod{
				{Name: "toofast", Start: "00:00", End: "12:00", IntervalSeconds: 1},
				{Name: "tooslow", Start: "12:00", End: "23:59", IntervalSeconds: 90000},
			},
		}
		if got := EffectiveInterval(cfg, at(6, 0)); got != models.MinPollingIntervalSeconds {
			t.Errorf("underflow = %d, want %d", got, models.MinPollingIntervalSeconds)
		}
		if got := EffectiveInterval(cfg, at(18, 0)); got != models.MaxPollingIntervalSeconds {
			t.Errorf("overflow = %d, want %d", got, models.MaxPollingIntervalSeconds)
		}
	})
}

func TestEffectiveIntervalTimezone(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skip("tzdata not available")
	}

	cfg := &models.PollingConfiguration{
		Timezone: "America/New_York",
		TimePeriods: []models.TimePeriod{
			{Name: "overnight", Start: "22:00", End: "06:00", IntervalSeconds: 1200},
		},
	}

	// 03:30 UTC on 2026-03-10 is 22:30 EST the previous evening: inside
	// the overnight window locally even though UTC says otherwise.
	if got := EffectiveInterval(cfg, at(3, 30)); got != 1200 {
		t.Errorf("tenant-local 22:30 = %d, want 1200", got)
	}

	// 15:00 UTC is 10:00 EST: outside.
	if got := EffectiveInterval(cfg, at(15, 0)); got != models.DefaultPollingIntervalSeconds {
		t.Errorf("tenant-local 10:00 = %d, want default", got)
	}
}

func TestEffectiveIntervalUnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := &models.PollingConfiguration{
		Timezone: "Not/AZone",
		TimePeriods: []models.TimePeriod{
			{Name: "morning", Start: "08:00", End: "12:00", IntervalSeconds: 60},
		},
	}
	if got := EffectiveInterval(cfg, at(9, 0)); got != 60 {
		t.Errorf("got %d, want 60 via UTC fallback", got)
	}
}

func TestEffectiveIntervalEmergencyOverride(t *testing.T) {
	started := at(10, 0)
	cfg := &models.PollingConfiguration{
		Timezone: "UTC",
		TimePeriods: []models.TimePeriod{
			{Name: "allday", Start: "00:00", End: "23:59", IntervalSeconds: 600},
		},
		EmergencyOverride:        true,
		EmergencyIntervalSeconds: 15,
		EmergencyTimeoutHours:    4,
		EmergencyStartedAt:       &started,
	}

	t.Run("active override beats periods", func(t *testing.T) {
		if got := EffectiveInterval(cfg, started.Add(time.Hour)); got != 15 {
			t.Errorf("got %d, want emergency 15", got)
		}
	})

	t.Run("still active just before the window closes", func(t *testing.T) {
		if got := EffectiveInterval(cfg, started.Add(3*time.Hour+59*time.Minute)); got != 15 {
			t.Errorf("T+3h59m = %d, want emergency 15", got)
		}
	})

	t.Run("lazily expired override yields the period interval", func(t *testing.T) {
		// The stored flag is still true; only the window has lapsed.
		if got := EffectiveInterval(cfg, started.Add(4*time.Hour+time.Minute)); got != 600 {
			t.Errorf("T+4h01m = %d, want period 600", got)
		}
		if !cfg.EmergencyOverride {
			t.Error("reads must not mutate the stored flag")
		}
	})

	t.Run("flag without an anchor is inert", func(t *testing.T) {
		orphan := &models.PollingConfiguration{
			Timezone:                 "UTC",
			EmergencyOverride:        true,
			EmergencyIntervalSeconds: 15,
			EmergencyTimeoutHours:    4,
		}
		if got := EffectiveInterval(orphan, at(12, 0)); got != models.DefaultPollingIntervalSeconds {
			t.Errorf("got %d, want default", got)
		}
	})
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"-1:00", 0, false},
		{"12", 0, false},
		{":30", 0, false},
		{"12:", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseClock(tc.in)
		if ok != tc.wantOK || (ok && got != tc.want) {
			t.Errorf("parseClock(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
