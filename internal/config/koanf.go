// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/callboard/config.yaml",
	"/etc/callboard/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // long-lived notification streams forbid a server write timeout
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			URL:               "",
			MaxConns:          25,
			MinConns:          5,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
			MigrateOnStart:    true,
		},
		NATS: NATSConfig{
			Enabled:        true,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			Host:           "127.0.0.1",
			Port:           4222,
			SubjectPrefix:  "callboard",
			ReconnectWait:  2 * time.Second,
			MaxReconnects:  60,
		},
		Dispatch: DispatchConfig{
			DefaultTimeoutSeconds: 300,
			SweepInterval:         30 * time.Second,
			ListPendingLimit:      50,
		},
		Delivery: DeliveryConfig{
			HeartbeatInterval: 30 * time.Second,
			CatchUpLimit:      100,
			SendBuffer:        32,
			BreakerFailures:   3,
			WriteTimeout:      10 * time.Second,
		},
		Polling: PollingConfig{
			SourcePollInterval:     3 * time.Second,
			DefaultIntervalSeconds: 300,
			HeartbeatStaleAfter:    2 * time.Minute,
		},
		Pairing: PairingConfig{
			CodeTTL:           15 * time.Minute,
			AttemptsPerMinute: 10,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			DeviceTokenTTL:    720 * time.Hour,
			AdminUsername:     "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// DATABASE_URL -> database.url
	// DELIVERY_HEARTBEAT_INTERVAL -> delivery.heartbeat_interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Only known variables are mapped; everything else is skipped so random
// environment variables cannot pollute the configuration.
//
// Examples:
//   - DATABASE_URL -> database.url
//   - HTTP_PORT -> server.port
//   - COMMAND_SWEEP_INTERVAL -> dispatch.sweep_interval
//   - NATS_EMBEDDED -> nats.embedded_server
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":          "server.host",
		"http_port":          "server.port",
		"http_read_timeout":  "server.read_timeout",
		"http_write_timeout": "server.write_timeout",
		"http_idle_timeout":  "server.idle_timeout",
		"shutdown_timeout":   "server.shutdown_timeout",
		"environment":        "server.environment",

		// Database mappings
		"database_url":            "database.url",
		"database_max_conns":      "database.max_conns",
		"database_min_conns":      "database.min_conns",
		"database_conn_lifetime":  "database.max_conn_lifetime",
		"database_conn_idle_time": "database.max_conn_idle_time",
		"database_health_period":  "database.health_check_period",
		"database_migrate":        "database.migrate_on_start",

		// NATS mappings
		"nats_enabled":        "nats.enabled",
		"nats_url":            "nats.url",
		"nats_embedded":       "nats.embedded_server",
		"nats_host":           "nats.host",
		"nats_port":           "nats.port",
		"nats_subject_prefix": "nats.subject_prefix",
		"nats_reconnect_wait": "nats.reconnect_wait",
		"nats_max_reconnects": "nats.max_reconnects",

		// Dispatch mappings
		"command_default_timeout_seconds": "dispatch.default_timeout_seconds",
		"command_sweep_interval":          "dispatch.sweep_interval",
		"command_list_limit":              "dispatch.list_pending_limit",

		// Delivery mappings
		"delivery_heartbeat_interval": "delivery.heartbeat_interval",
		"delivery_catchup_limit":      "delivery.catchup_limit",
		"delivery_send_buffer":        "delivery.send_buffer",
		"delivery_breaker_failures":   "delivery.breaker_failures",
		"delivery_write_timeout":      "delivery.write_timeout",

		// Polling mappings
		"polling_source_interval":          "polling.source_poll_interval",
		"polling_default_interval_seconds": "polling.default_interval_seconds",
		"heartbeat_stale_after":            "polling.heartbeat_stale_after",

		// Pairing mappings
		"pairing_code_ttl":            "pairing.code_ttl",
		"pairing_attempts_per_minute": "pairing.attempts_per_minute",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Security mappings
		"auth_mode":           "security.auth_mode",
		"jwt_secret":          "security.jwt_secret",
		"device_token_ttl":    "security.device_token_ttl",
		"admin_username":      "security.admin_username",
		"admin_password":      "security.admin_password",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",
		"trusted_proxies":     "security.trusted_proxies",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
