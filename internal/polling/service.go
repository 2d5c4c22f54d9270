// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package polling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/models"
)

// ErrInvalidConfiguration marks a schedule rejected by validation. The API
// layer maps it to a validation error response.
var ErrInvalidConfiguration = errors.New("polling: invalid configuration")

// Defaults applied when an override is activated for a tenant that never
// configured the emergency parameters.
const (
	defaultEmergencyIntervalSeconds = 30
	defaultEmergencyTimeoutHours    = 4
)

// Store is the persistence surface the service needs.
type Store interface {
	GetPollingConfiguration(ctx context.Context, orgID string) (*models.PollingConfiguration, error)
	UpsertPollingConfiguration(ctx context.Context, cfg *models.PollingConfiguration) error
	ActivateEmergency(ctx context.Context, orgID string, intervalSeconds, timeoutHours int, startedAt time.Time) error
	DeactivateEmergency(ctx context.Context, orgID string, now time.Time) error
	ClearExpiredEmergency(ctx context.Context, orgID string, now time.Time) (bool, error)
}

// Service owns the per-tenant polling schedules: the admin read/write
// surface, the emergency override lifecycle, and interval resolution for
// the device-facing endpoints.
type Service struct {
	store Store
}

// NewService creates a polling schedule service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EffectiveIntervalFor resolves the interval for a tenant at now. A tenant
// with no stored configuration gets the default; store errors propagate so
// callers can distinguish "unconfigured" from "unavailable".
func (s *Service) EffectiveIntervalFor(ctx context.Context, orgID string, now time.Time) (int, error) {
	cfg, err := s.store.GetPollingConfiguration(ctx, orgID)
	if errors.Is(err, database.ErrNotFound) {
		return models.DefaultPollingIntervalSeconds, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load polling configuration: %w", err)
	}
	return EffectiveInterval(cfg, now), nil
}

// Configuration returns the stored schedule for a tenant. The emergency
// flag is reported as stored; use EmergencyState for the lazily-expired
// view.
func (s *Service) Configuration(ctx context.Context, orgID string) (*models.PollingConfiguration, error) {
	cfg, err := s.store.GetPollingConfiguration(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateConfiguration validates and writes a tenant schedule. As a
// write-path touch it also clears an override whose window has lapsed, per
// the lazy-expiry rule.
func (s *Service) UpdateConfiguration(ctx context.Context, cfg *models.PollingConfiguration, now time.Time) error {
	if err := validateConfiguration(cfg); err != nil {
		return err
	}

	cfg.UpdatedAt = now
	if err := s.store.UpsertPollingConfiguration(ctx, cfg); err != nil {
		return fmt.Errorf("store polling configuration: %w", err)
	}

	if cleared, err := s.store.ClearExpiredEmergency(ctx, cfg.OrganizationID, now); err != nil {
		// The schedule write succeeded; a failed lazy clear only delays
		// cleanup until the next touch.
		logging.Warn().Err(err).
			Str("organization_id", cfg.OrganizationID).
			Msg("Failed to clear expired emergency override")
	} else if cleared {
		logging.Info().
			Str("organization_id", cfg.OrganizationID).
			Msg("Cleared expired emergency override on configuration write")
	}
	return nil
}

// ActivateEmergency forces the emergency interval for the tenant starting
// at now and returns the computed window. Re-activating restarts the
// window.
func (s *Service) ActivateEmergency(ctx context.Context, orgID string, now time.Time) (*models.EmergencyState, error) {
	interval := defaultEmergencyIntervalSeconds
	timeout := defaultEmergencyTimeoutHours

	cfg, err := s.store.GetPollingConfiguration(ctx, orgID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// First touch for this tenant; the activate upsert creates the row.
	case err != nil:
		return nil, fmt.Errorf("load polling configuration: %w", err)
	default:
		if cfg.EmergencyIntervalSeconds > 0 {
			interval = cfg.EmergencyIntervalSeconds
		}
		if cfg.EmergencyTimeoutHours > 0 {
			timeout = cfg.EmergencyTimeoutHours
		}
	}

	if err := s.store.ActivateEmergency(ctx, orgID, interval, timeout, now); err != nil {
		return nil, fmt.Errorf("activate emergency override: %w", err)
	}

	logging.Warn().
		Str("organization_id", orgID).
		Int("interval_seconds", interval).
		Int("timeout_hours", timeout).
		Msg("Emergency polling override activated")

	expires := now.Add(time.Duration(timeout) * time.Hour)
	return &models.EmergencyState{
		Active:           true,
		IntervalSeconds:  clampInterval(interval),
		StartedAt:        &now,
		ExpiresAt:        &expires,
		RemainingSeconds: int64(timeout) * 3600,
	}, nil
}

// DeactivateEmergency ends the override. Deactivating an inactive tenant
// is a no-op success; the returned state is always inactive.
func (s *Service) DeactivateEmergency(ctx context.Context, orgID string, now time.Time) (*models.EmergencyState, error) {
	if err := s.store.DeactivateEmergency(ctx, orgID, now); err != nil {
		return nil, fmt.Errorf("deactivate emergency override: %w", err)
	}

	logging.Info().
		Str("organization_id", orgID).
		Msg("Emergency polling override deactivated")

	return &models.EmergencyState{Active: false}, nil
}

// EmergencyState reports the computed override view at now: a stored flag
// past its window shows as inactive with zero remaining seconds, matching
// what devices experience.
func (s *Service) EmergencyState(ctx context.Context, orgID string, now time.Time) (*models.EmergencyState, error) {
	cfg, err := s.store.GetPollingConfiguration(ctx, orgID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.EmergencyState{Active: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load polling configuration: %w", err)
	}

	if !cfg.EmergencyActiveAt(now) {
		return &models.EmergencyState{Active: false}, nil
	}

	expires := cfg.EmergencyExpiresAt()
	return &models.EmergencyState{
		Active:           true,
		IntervalSeconds:  clampInterval(cfg.EmergencyIntervalSeconds),
		StartedAt:        cfg.EmergencyStartedAt,
		ExpiresAt:        &expires,
		RemainingSeconds: int64(expires.Sub(now).Seconds()),
	}, nil
}

// validateConfiguration rejects schedules the scheduler could not honor.
func validateConfiguration(cfg *models.PollingConfiguration) error {
	if cfg.OrganizationID == "" {
		return fmt.Errorf("%w: organization_id is required", ErrInvalidConfiguration)
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfiguration, cfg.Timezone)
		}
	}

	for i, p := range cfg.TimePeriods {
		if _, ok := parseClock(p.Start); !ok {
			return fmt.Errorf("%w: period %d start %q is not HH:MM", ErrInvalidConfiguration, i, p.Start)
		}
		if _, ok := parseClock(p.End); !ok {
			return fmt.Errorf("%w: period %d end %q is not HH:MM", ErrInvalidConfiguration, i, p.End)
		}
		if p.IntervalSeconds < models.MinPollingIntervalSeconds || p.IntervalSeconds > models.MaxPollingIntervalSeconds {
			return fmt.Errorf("%w: period %d interval %ds outside [%d, %d]",
				ErrInvalidConfiguration, i, p.IntervalSeconds,
				models.MinPollingIntervalSeconds, models.MaxPollingIntervalSeconds)
		}
	}

	if cfg.EmergencyIntervalSeconds != 0 &&
		(cfg.EmergencyIntervalSeconds < models.MinPollingIntervalSeconds ||
			cfg.EmergencyIntervalSeconds > models.MaxPollingIntervalSeconds) {
		return fmt.Errorf("%w: emergency interval %ds outside [%d, %d]",
			ErrInvalidConfiguration, cfg.EmergencyIntervalSeconds,
			models.MinPollingIntervalSeconds, models.MaxPollingIntervalSeconds)
	}

	if cfg.EmergencyTimeoutHours < 0 {
		return fmt.Errorf("%w: emergency timeout hours must not be negative", ErrInvalidConfiguration)
	}

	return nil
}
