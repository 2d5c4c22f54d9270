// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateDispatch(); err != nil {
		return err
	}

	if err := c.validateDelivery(); err != nil {
		return err
	}

	if err := c.validatePolling(); err != nil {
		return err
	}

	if err := c.validatePairing(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < time.Second {
		return fmt.Errorf("HTTP_READ_TIMEOUT must be at least 1s")
	}
	if c.Server.WriteTimeout != 0 {
		// Notification streams stay open indefinitely; a server-level write
		// timeout would sever every stream at that deadline.
		return fmt.Errorf("HTTP_WRITE_TIMEOUT must be 0 (per-write deadlines are handled by delivery sessions)")
	}
	if c.Server.ShutdownTimeout < time.Second {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be at least 1s")
	}

	env := c.Server.Environment
	if env != "development" && env != "production" {
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", env)
	}
	return nil
}

// validateDatabase validates PostgreSQL pool configuration
func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if err := validatePostgresURL(c.Database.URL); err != nil {
		return fmt.Errorf("DATABASE_URL is invalid: %w", err)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be at least 1")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DATABASE_MIN_CONNS must be between 0 and DATABASE_MAX_CONNS")
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if !c.NATS.EmbeddedServer {
		if err := validateNATSURL(c.NATS.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}

	if c.NATS.EmbeddedServer {
		if c.NATS.Port < 1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", c.NATS.Port)
		}
	}

	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must not be empty")
	}
	if strings.ContainsAny(c.NATS.SubjectPrefix, " \t.>*") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must not contain whitespace or subject wildcards")
	}
	return nil
}

// Dispatch limit constants. Command timeouts below the floor race the sweep
// cadence; timeouts above the ceiling park dead commands for days.
const (
	commandTimeoutFloorSeconds   = 5
	commandTimeoutCeilingSeconds = 86400
	sweepIntervalFloor           = 5 * time.Second
	sweepIntervalCeiling         = 10 * time.Minute
)

// validateDispatch validates command dispatcher configuration
func (c *Config) validateDispatch() error {
	t := c.Dispatch.DefaultTimeoutSeconds
	if t < commandTimeoutFloorSeconds || t > commandTimeoutCeilingSeconds {
		return fmt.Errorf("COMMAND_DEFAULT_TIMEOUT_SECONDS must be between %d and %d, got %d",
			commandTimeoutFloorSeconds, commandTimeoutCeilingSeconds, t)
	}
	if c.Dispatch.SweepInterval < sweepIntervalFloor || c.Dispatch.SweepInterval > sweepIntervalCeiling {
		return fmt.Errorf("COMMAND_SWEEP_INTERVAL must be between %s and %s",
			sweepIntervalFloor, sweepIntervalCeiling)
	}
	if c.Dispatch.ListPendingLimit < 1 || c.Dispatch.ListPendingLimit > 500 {
		return fmt.Errorf("COMMAND_LIST_LIMIT must be between 1 and 500")
	}
	return nil
}

// validateDelivery validates delivery session configuration
func (c *Config) validateDelivery() error {
	hb := c.Delivery.HeartbeatInterval
	if hb < 30*time.Second || hb > 60*time.Second {
		return fmt.Errorf("DELIVERY_HEARTBEAT_INTERVAL must be between 30s and 60s, got %s", hb)
	}
	if c.Delivery.CatchUpLimit < 1 || c.Delivery.CatchUpLimit > 1000 {
		return fmt.Errorf("DELIVERY_CATCHUP_LIMIT must be between 1 and 1000")
	}
	if c.Delivery.SendBuffer < 1 {
		return fmt.Errorf("DELIVERY_SEND_BUFFER must be at least 1")
	}
	if c.Delivery.BreakerFailures < 1 {
		return fmt.Errorf("DELIVERY_BREAKER_FAILURES must be at least 1")
	}
	if c.Delivery.WriteTimeout < time.Second {
		return fmt.Errorf("DELIVERY_WRITE_TIMEOUT must be at least 1s")
	}
	return nil
}

// validatePolling validates adaptive polling scheduler configuration
func (c *Config) validatePolling() error {
	spi := c.Polling.SourcePollInterval
	if spi < 2*time.Second || spi > 5*time.Second {
		return fmt.Errorf("POLLING_SOURCE_INTERVAL must be between 2s and 5s, got %s", spi)
	}
	di := c.Polling.DefaultIntervalSeconds
	if di < 5 || di > 3600 {
		return fmt.Errorf("POLLING_DEFAULT_INTERVAL_SECONDS must be between 5 and 3600, got %d", di)
	}
	if c.Polling.HeartbeatStaleAfter < 30*time.Second {
		return fmt.Errorf("HEARTBEAT_STALE_AFTER must be at least 30s")
	}
	return nil
}

// validatePairing validates pairing configuration
func (c *Config) validatePairing() error {
	if c.Pairing.CodeTTL < time.Minute || c.Pairing.CodeTTL > 24*time.Hour {
		return fmt.Errorf("PAIRING_CODE_TTL must be between 1m and 24h")
	}
	if c.Pairing.AttemptsPerMinute < 1 {
		return fmt.Errorf("PAIRING_ATTEMPTS_PER_MINUTE must be at least 1")
	}
	return nil
}

// validateAPI validates API configuration
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}

// minJWTSecretLength is the minimum acceptable HMAC secret length in bytes.
const minJWTSecretLength = 32

// validateSecurity validates authentication and rate limiting configuration
func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	case "basic":
		if err := c.validateBasicAuth(); err != nil {
			return err
		}
	case "none":
		if c.Server.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not permitted in production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be jwt, basic, or none, got %q", c.Security.AuthMode)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}

	if c.Security.DeviceTokenTTL < time.Hour {
		return fmt.Errorf("DEVICE_TOKEN_TTL must be at least 1h")
	}
	return nil
}

// validateJWTSecret validates the JWT signing secret
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		if c.Server.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt in production")
		}
		// Development tolerates an empty secret; a random one is generated at startup.
		return nil
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

// validateBasicAuth validates basic auth credentials
func (c *Config) validateBasicAuth() error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE=basic")
	}
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE=basic")
	}
	if len(c.Security.AdminPassword) < 12 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 12 characters")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
