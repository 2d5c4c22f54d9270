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
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/callboardhq/callboard/internal/models"
)

const (
	getScreenSQL = `SELECT id, organization_id, COALESCE(name, ''),
		last_seen_at, last_heartbeat
		FROM screens WHERE id = $1`

	upsertScreenSQL = `INSERT INTO screens (id, organization_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			name = EXCLUDED.name`

	touchScreenSQL = `UPDATE screens
		SET last_seen_at = $2, last_heartbeat = $3
		WHERE id = $1`

	insertPairingSQL = `INSERT INTO device_pairings (code, created_at, expires_at)
		VALUES ($1, $2, $3)`

	getPairingSQL = `SELECT code, created_at, expires_at,
		COALESCE(screen_id, ''), COALESCE(device_id, ''), claimed_at
		FROM device_pairings WHERE code = $1`

	// The claim mirrors the notification rule: exactly one admin attaches
	// the code to a screen, everyone else loses the conditional update.
	claimPairingSQL = `UPDATE device_pairings
		SET screen_id = $2, device_id = $3, claimed_at = $4
		WHERE code = $1 AND claimed_at IS NULL AND expires_at > $4`

	// Claimed rows survive until the device collects its token; only
	// unclaimed codes age out.
	purgePairingsSQL = `DELETE FROM device_pairings
		WHERE expires_at < $1 AND claimed_at IS NULL`

	insertDeviceSQL = `INSERT INTO devices (id, screen_id, paired_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			screen_id = EXCLUDED.screen_id,
			paired_at = EXCLUDED.paired_at`

	getDeviceSQL = `SELECT id, screen_id, paired_at FROM devices WHERE id = $1`
)

// GetScreen fetches one screen row, or ErrNotFound. Screen rows are owned
// by the surrounding CMS; this subsystem only reads them and touches the
// liveness columns.
func (s *Store) GetScreen(ctx context.Context, id string) (sc *models.Screen, err error) {
	defer func(start time.Time) { observe("get", "screens", start, err) }(time.Now())

	var (
		scr   models.Screen
		hbRaw []byte
	)
	err = s.pool.QueryRow(ctx, getScreenSQL, id).Scan(
		&scr.ID, &scr.OrganizationID, &scr.Name, &scr.LastSeenAt, &hbRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get screen: %w", err)
	}

	if len(hbRaw) > 0 {
		if err := json.Unmarshal(hbRaw, &scr.LastHeartbeat); err != nil {
			return nil, fmt.Errorf("decode last_heartbeat: %w", err)
		}
	}
	return &scr, nil
}

// UpsertScreen writes the identity columns of a screen row. Liveness
// columns are untouched; TouchScreenHeartbeat owns those.
func (s *Store) UpsertScreen(ctx context.Context, sc *models.Screen) (err error) {
	defer func(start time.Time) { observe("upsert", "screens", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, upsertScreenSQL, sc.ID, sc.OrganizationID, textOrNil(sc.Name))
	if err != nil {
		return fmt.Errorf("upsert screen: %w", err)
	}
	return nil
}

// TouchScreenHeartbeat records a device heartbeat against its screen.
// ErrNotFound when the screen row does not exist; heartbeats never create
// screens.
func (s *Store) TouchScreenHeartbeat(ctx context.Context, screenID string, hb *models.Heartbeat, now time.Time) (err error) {
	defer func(start time.Time) { observe("touch", "screens", start, err) }(time.Now())

	var hbRaw interface{}
	if hb != nil {
		raw, merr := json.Marshal(hb)
		if merr != nil {
			return fmt.Errorf("encode heartbeat: %w", merr)
		}
		hbRaw = raw
	}

	tag, err := s.pool.Exec(ctx, touchScreenSQL, screenID, now, hbRaw)
	if err != nil {
		return fmt.Errorf("touch screen heartbeat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertPairingCode stores a freshly generated code. ErrDuplicateCode when
// the code collides with a live one; callers regenerate.
func (s *Store) InsertPairingCode(ctx context.Context, p *models.DevicePairing) (err error) {
	defer func(start time.Time) { observe("insert", "device_pairings", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, insertPairingSQL, p.Code, p.CreatedAt, p.ExpiresAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("insert pairing code: %w", err)
	}
	return nil
}

// GetPairing fetches one pairing row by code, or ErrNotFound.
func (s *Store) GetPairing(ctx context.Context, code string) (p *models.DevicePairing, err error) {
	defer func(start time.Time) { observe("get", "device_pairings", start, err) }(time.Now())

	var pr models.DevicePairing
	err = s.pool.QueryRow(ctx, getPairingSQL, code).Scan(
		&pr.Code, &pr.CreatedAt, &pr.ExpiresAt, &pr.ScreenID, &pr.DeviceID, &pr.ClaimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pairing: %w", err)
	}
	return &pr, nil
}

// ClaimPairing attaches an unclaimed, unexpired code to a screen and the
// device id provisioned for it. On a missed conditional update the read
// back distinguishes ErrNotFound, ErrCodeExpired, and ErrAlreadyClaimed.
func (s *Store) ClaimPairing(ctx context.Context, code, screenID, deviceID string, now time.Time) (err error) {
	defer func(start time.Time) { observe("claim", "device_pairings", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, claimPairingSQL, code, screenID, deviceID, now)
	if err != nil {
		return fmt.Errorf("claim pairing: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	p, err := s.GetPairing(ctx, code)
	if err != nil {
		return err
	}
	if p.Claimed() {
		return ErrAlreadyClaimed
	}
	return ErrCodeExpired
}

// PurgeExpiredPairings deletes unclaimed codes past their expiry and
// returns how many went. Run by the background sweeper.
func (s *Store) PurgeExpiredPairings(ctx context.Context, now time.Time) (n int64, err error) {
	defer func(start time.Time) { observe("purge", "device_pairings", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, purgePairingsSQL, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired pairings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertDevice records a paired device and its screen alias.
func (s *Store) UpsertDevice(ctx context.Context, d *models.Device) (err error) {
	defer func(start time.Time) { observe("upsert", "devices", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, insertDeviceSQL, d.ID, d.ScreenID, d.PairedAt)
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

// GetDevice fetches one device row, or ErrNotFound. Used to resolve the
// device_id alias to its screen at ingress.
func (s *Store) GetDevice(ctx context.Context, id string) (d *models.Device, err error) {
	defer func(start time.Time) { observe("get", "devices", start, err) }(time.Now())

	var dev models.Device
	err = s.pool.QueryRow(ctx, getDeviceSQL, id).Scan(&dev.ID, &dev.ScreenID, &dev.PairedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &dev, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
