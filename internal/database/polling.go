// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/callboardhq/callboard/internal/models"
)

const (
	getPollingConfigSQL = `SELECT organization_id, timezone, time_periods,
		emergency_override, emergency_interval_seconds, emergency_timeout_hours,
		emergency_started_at, updated_at
		FROM polling_configurations WHERE organization_id = $1`

	upsertPollingConfigSQL = `INSERT INTO polling_configurations
		(organization_id, timezone, time_periods, emergency_override,
		 emergency_interval_seconds, emergency_timeout_hours,
		 emergency_started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (organization_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			time_periods = EXCLUDED.time_periods,
			emergency_override = EXCLUDED.emergency_override,
			emergency_interval_seconds = EXCLUDED.emergency_interval_seconds,
			emergency_timeout_hours = EXCLUDED.emergency_timeout_hours,
			emergency_started_at = EXCLUDED.emergency_started_at,
			updated_at = EXCLUDED.updated_at`

	activateEmergencySQL = `INSERT INTO polling_configurations
		(organization_id, emergency_override, emergency_interval_seconds,
		 emergency_timeout_hours, emergency_started_at, updated_at)
		VALUES ($1, TRUE, $2, $3, $4, $4)
		ON CONFLICT (organization_id) DO UPDATE SET
			emergency_override = TRUE,
			emergency_interval_seconds = EXCLUDED.emergency_interval_seconds,
			emergency_timeout_hours = EXCLUDED.emergency_timeout_hours,
			emergency_started_at = EXCLUDED.emergency_started_at,
			updated_at = EXCLUDED.updated_at`

	deactivateEmergencySQL = `UPDATE polling_configurations
		SET emergency_override = FALSE, emergency_started_at = NULL, updated_at = $2
		WHERE organization_id = $1`

	// Lazy expiry: reads past the deadline already ignore the flag; this
	// clears the stale row state on the next write-path touch.
	clearExpiredEmergencySQL = `UPDATE polling_configurations
		SET emergency_override = FALSE, emergency_started_at = NULL, updated_at = $2
		WHERE organization_id = $1
		  AND emergency_override
		  AND emergency_started_at IS NOT NULL
		  AND emergency_started_at + emergency_timeout_hours * interval '1 hour' < $2`
)

// GetPollingConfiguration fetches one tenant's polling schedule, or
// ErrNotFound when the tenant has never been configured (callers fall back
// to the default interval).
func (s *Store) GetPollingConfiguration(ctx context.Context, orgID string) (cfg *models.PollingConfiguration, err error) {
	defer func(start time.Time) { observe("get", "polling_configurations", start, err) }(time.Now())

	var (
		c          models.PollingConfiguration
		periodsRaw []byte
	)
	err = s.pool.QueryRow(ctx, getPollingConfigSQL, orgID).Scan(
		&c.OrganizationID, &c.Timezone, &periodsRaw, &c.EmergencyOverride,
		&c.EmergencyIntervalSeconds, &c.EmergencyTimeoutHours,
		&c.EmergencyStartedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get polling configuration: %w", err)
	}

	if len(periodsRaw) > 0 {
		if err := json.Unmarshal(periodsRaw, &c.TimePeriods); err != nil {
			return nil, fmt.Errorf("decode time_periods: %w", err)
		}
	}
	return &c, nil
}

// UpsertPollingConfiguration writes the full schedule for a tenant,
// creating the row on first configuration.
func (s *Store) UpsertPollingConfiguration(ctx context.Context, cfg *models.PollingConfiguration) (err error) {
	defer func(start time.Time) { observe("upsert", "polling_configurations", start, err) }(time.Now())

	periods := cfg.TimePeriods
	if periods == nil {
		periods = []models.TimePeriod{}
	}
	periodsRaw, err := json.Marshal(periods)
	if err != nil {
		return fmt.Errorf("encode time_periods: %w", err)
	}

	_, err = s.pool.Exec(ctx, upsertPollingConfigSQL,
		cfg.OrganizationID, cfg.Timezone, periodsRaw, cfg.EmergencyOverride,
		cfg.EmergencyIntervalSeconds, cfg.EmergencyTimeoutHours,
		cfg.EmergencyStartedAt, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert polling configuration: %w", err)
	}
	return nil
}

// ActivateEmergency turns the override on for a tenant, creating the
// configuration row if it does not exist yet. startedAt anchors the expiry
// window.
func (s *Store) ActivateEmergency(ctx context.Context, orgID string, intervalSeconds, timeoutHours int, startedAt time.Time) (err error) {
	defer func(start time.Time) { observe("activate_emergency", "polling_configurations", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, activateEmergencySQL, orgID, intervalSeconds, timeoutHours, startedAt)
	if err != nil {
		return fmt.Errorf("activate emergency override: %w", err)
	}
	return nil
}

// DeactivateEmergency turns the override off. Deactivating a tenant with
// no configuration row is a no-op success.
func (s *Store) DeactivateEmergency(ctx context.Context, orgID string, now time.Time) (err error) {
	defer func(start time.Time) { observe("deactivate_emergency", "polling_configurations", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, deactivateEmergencySQL, orgID, now)
	if err != nil {
		return fmt.Errorf("deactivate emergency override: %w", err)
	}
	return nil
}

// ClearExpiredEmergency resets the override iff its window has lapsed.
// Returns whether a stale flag was actually cleared.
func (s *Store) ClearExpiredEmergency(ctx context.Context, orgID string, now time.Time) (cleared bool, err error) {
	defer func(start time.Time) { observe("clear_expired_emergency", "polling_configurations", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, clearExpiredEmergencySQL, orgID, now)
	if err != nil {
		return false, fmt.Errorf("clear expired emergency override: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
