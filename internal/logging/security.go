// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents a security-relevant event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "pairing_claimed", "token_rejected").
	Event string
	// ScreenID is the screen identifier (if known).
	ScreenID string
	// DeviceID is the device identifier (sanitized).
	DeviceID string
	// PairingCode is the pairing code involved (sanitized).
	PairingCode string
	// IPAddress is the client's IP address.
	IPAddress string
	// UserAgent is the client's user agent (truncated).
	UserAgent string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the error message if the operation failed.
	Error string
	// Details contains additional sanitized details.
	Details map[string]string
}

// SecurityLogger provides secure logging for authentication and pairing events.
// It automatically sanitizes sensitive data before logging.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event with automatic sanitization.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info().
		Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.ScreenID != "" {
		e = e.Str("screen_id", event.ScreenID)
	}

	if event.DeviceID != "" {
		e = e.Str("device_id", SanitizeDeviceID(event.DeviceID))
	}

	if event.PairingCode != "" {
		e = e.Str("pairing_code", SanitizePairingCode(event.PairingCode))
	}

	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}

	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}

	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	// Add sanitized details
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// Debug logs a debug-level message.
func (l *SecurityLogger) Debug(msg string, fields ...interface{}) {
	e := l.logger.Debug()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Info logs an info-level message.
func (l *SecurityLogger) Info(msg string, fields ...interface{}) {
	e := l.logger.Info()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Warn logs a warning-level message.
func (l *SecurityLogger) Warn(msg string, fields ...interface{}) {
	e := l.logger.Warn()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Error logs an error-level message.
func (l *SecurityLogger) Error(msg string, fields ...interface{}) {
	e := l.logger.Error()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// addFieldPairs adds key-value pairs to a zerolog event.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			e = e.Interface(key, fields[i+1])
		}
	}
	return e
}

// ============================================================
// Pre-defined Security Events
// ============================================================

// LogPairingCodeIssued logs generation of a new pairing code for a screen.
func (l *SecurityLogger) LogPairingCodeIssued(screenID, code, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:       "pairing_code_issued",
		ScreenID:    screenID,
		PairingCode: code,
		IPAddress:   ip,
		Success:     true,
	})
}

// LogPairingClaimed logs a device successfully claiming a pairing code.
func (l *SecurityLogger) LogPairingClaimed(screenID, deviceID, code, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:       "pairing_claimed",
		ScreenID:    screenID,
		DeviceID:    deviceID,
		PairingCode: code,
		IPAddress:   ip,
		Success:     true,
	})
}

// LogPairingFailure logs a failed pairing attempt (unknown, expired, or
// already claimed code).
func (l *SecurityLogger) LogPairingFailure(code, ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:       "pairing_failed",
		PairingCode: code,
		IPAddress:   ip,
		UserAgent:   userAgent,
		Success:     false,
		Error:       reason,
	})
}

// LogTokenIssued logs issuance of a device token after pairing.
func (l *SecurityLogger) LogTokenIssued(screenID, deviceID string) {
	l.LogEvent(&SecurityEvent{
		Event:    "device_token_issued",
		ScreenID: screenID,
		DeviceID: deviceID,
		Success:  true,
	})
}

// LogTokenRejected logs rejection of a device token (invalid signature,
// expired, or screen mismatch).
func (l *SecurityLogger) LogTokenRejected(ip, path, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "device_token_rejected",
		IPAddress: ip,
		Success:   false,
		Error:     reason,
		Details: map[string]string{
			"path": path,
		},
	})
}

// LogAdminLoginFailure logs a failed administrative login.
func (l *SecurityLogger) LogAdminLoginFailure(username, ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "admin_login_failed",
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   false,
		Error:     reason,
		Details: map[string]string{
			"username": SanitizeUsername(username),
		},
	})
}

// LogAccessDenied logs an authorization denial for an authenticated subject.
func (l *SecurityLogger) LogAccessDenied(subject, path, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "access_denied",
		IPAddress: ip,
		Success:   false,
		Details: map[string]string{
			"subject": subject,
			"path":    path,
		},
	})
}

// LogRateLimited logs a request rejected by rate limiting.
func (l *SecurityLogger) LogRateLimited(ip, path string) {
	l.LogEvent(&SecurityEvent{
		Event:     "rate_limited",
		IPAddress: ip,
		Success:   false,
		Details: map[string]string{
			"path": path,
		},
	})
}

// ============================================================
// Sanitization Functions
// ============================================================

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizePairingCode masks a pairing code, keeping the first 2 characters.
// Example: "A3F9KQ" -> "A3****"
func SanitizePairingCode(code string) string {
	if code == "" {
		return ""
	}
	if len(code) <= 2 {
		return "***"
	}
	return code[:2] + strings.Repeat("*", len(code)-2)
}

// SanitizeDeviceID masks a device ID for privacy.
// Example: "0f8fad5b-d9cb-469f-a165-70867728950e" -> "0f8f...950e"
func SanitizeDeviceID(deviceID string) string {
	if deviceID == "" {
		return ""
	}
	if len(deviceID) <= 8 {
		return "***"
	}
	return deviceID[:4] + "..." + deviceID[len(deviceID)-4:]
}

// SanitizeUsername masks a username, keeping first 2 characters.
// Example: "johndoe" -> "jo***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	// Remove potential secrets from error messages
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
		"cookie",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			// Generic error message
			return "authentication error"
		}
	}

	// Truncate long errors
	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	// Check for sensitive key names
	sensitiveKeys := map[string]bool{
		"token":         true,
		"device_token":  true,
		"access_token":  true,
		"password":      true,
		"secret":        true,
		"api_key":       true,
		"apikey":        true,
		"authorization": true,
		"bearer":        true,
		"cookie":        true,
	}

	if sensitiveKeys[lowerKey] {
		return SanitizeToken(value)
	}

	if lowerKey == "pairing_code" {
		return SanitizePairingCode(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
