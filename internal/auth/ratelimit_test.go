// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAttemptLimiterBurst(t *testing.T) {
	l := NewAttemptLimiter(5)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d denied inside burst", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("attempt 6 allowed, want denial after burst")
	}
}

func TestAttemptLimiterTracksIPsIndependently(t *testing.T) {
	l := NewAttemptLimiter(2)
	defer l.Stop()

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("first IP denied inside burst")
	}
	if l.Allow("10.0.0.1") {
		t.Error("first IP allowed past burst")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("second IP denied despite fresh budget")
	}
}

func TestAttemptLimiterDefaultBudget(t *testing.T) {
	l := NewAttemptLimiter(0)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d denied inside default burst", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("attempt 11 allowed, want default budget of 10")
	}
}

func TestAttemptLimiterCleanupDropsStaleEntries(t *testing.T) {
	l := NewAttemptLimiter(5)
	defer l.Stop()

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")

	l.mu.Lock()
	l.limiters["10.0.0.1"].lastAccess = time.Now().Add(-2 * time.Hour)
	l.mu.Unlock()

	l.cleanup()

	l.mu.Lock()
	_, stale := l.limiters["10.0.0.1"]
	_, fresh := l.limiters["10.0.0.2"]
	l.mu.Unlock()

	if stale {
		t.Error("stale entry survived cleanup")
	}
	if !fresh {
		t.Error("fresh entry removed by cleanup")
	}
}

func TestAttemptLimiterStopIdempotent(t *testing.T) {
	l := NewAttemptLimiter(5)
	l.Stop()
	l.Stop()
}

func TestClientIP(t *testing.T) {
	trusted := map[string]bool{"10.0.0.9": true}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		proxies    map[string]bool
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer ignored",
			remoteAddr: "203.0.113.7:54321",
			xff:        "198.51.100.1",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy honored",
			remoteAddr: "10.0.0.9:54321",
			xff:        "198.51.100.1, 10.0.0.9",
			proxies:    trusted,
			want:       "198.51.100.1",
		},
		{
			name:       "invalid forwarded value falls back to peer",
			remoteAddr: "10.0.0.9:54321",
			xff:        "not-an-ip",
			proxies:    trusted,
			want:       "10.0.0.9",
		},
		{
			name:       "real ip header as fallback",
			remoteAddr: "10.0.0.9:54321",
			realIP:     "198.51.100.2",
			proxies:    trusted,
			want:       "198.51.100.2",
		},
		{
			name:       "no proxies configured disables forwarding headers",
			remoteAddr: "10.0.0.9:54321",
			xff:        "198.51.100.1",
			want:       "10.0.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/devices/check-pairing/ABC123", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := ClientIP(req, tt.proxies); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
