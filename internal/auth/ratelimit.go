// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles the unauthenticated pairing endpoints per
// client IP. Codes are short, so the brute-force guard lives here
// rather than in code entropy.
type AttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewAttemptLimiter allows attemptsPerMinute requests per IP, with the
// same value as burst headroom. A stale-entry sweep runs until Stop.
func NewAttemptLimiter(attemptsPerMinute int) *AttemptLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 10
	}
	l := &AttemptLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(attemptsPerMinute)),
		burst:    attemptsPerMinute,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(5 * time.Minute)
	return l
}

// Allow reports whether another attempt from ip fits the budget.
func (l *AttemptLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *AttemptLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *AttemptLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops entries idle for over an hour.
func (l *AttemptLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	threshold := time.Now().Add(-time.Hour)
	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
		}
	}
}

// ClientIP resolves the caller's address. Forwarding headers are only
// honored when the direct peer is a configured trusted proxy; otherwise
// a client could spoof X-Forwarded-For to dodge the limiter.
func ClientIP(r *http.Request, trustedProxies map[string]bool) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if len(trustedProxies) == 0 || !trustedProxies[host] {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return host
}
