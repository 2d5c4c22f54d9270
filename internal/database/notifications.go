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

	"github.com/jackc/pgx/v5"

	"github.com/callboardhq/callboard/internal/models"
)

const notificationColumns = `id, screen_id, notification_type, title,
	COALESCE(message, ''), COALESCE(schedule_id, ''), COALESCE(playlist_id, ''),
	COALESCE(media_asset_id, ''), priority, created_at, delivered_at`

const (
	insertNotificationSQL = `INSERT INTO notifications
		(id, screen_id, notification_type, title, message, schedule_id,
		 playlist_id, media_asset_id, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getNotificationSQL = `SELECT ` + notificationColumns + `
		FROM notifications WHERE id = $1`

	listUndeliveredSQL = `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE screen_id = $1 AND delivered_at IS NULL
		ORDER BY created_at ASC
		LIMIT $2`

	listUndeliveredSinceSQL = `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE screen_id = $1 AND delivered_at IS NULL AND created_at > $2
		ORDER BY created_at ASC
		LIMIT $3`

	// The claim. delivered_at moves NULL -> timestamp at most once; whoever
	// matches the WHERE owns delivery of the row.
	claimNotificationSQL = `UPDATE notifications
		SET delivered_at = $2
		WHERE id = $1 AND delivered_at IS NULL`

	countUndeliveredSQL = `SELECT COUNT(*) FROM notifications
		WHERE screen_id = $1 AND delivered_at IS NULL`
)

// InsertNotification stores a published notification with delivered_at
// NULL. The caller assigns id and created_at.
func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) (err error) {
	defer func(start time.Time) { observe("insert", "notifications", start, err) }(time.Now())

	_, err = s.pool.Exec(ctx, insertNotificationSQL,
		n.ID, n.ScreenID, string(n.NotificationType), n.Title,
		textOrNil(n.Message), textOrNil(n.Refs.ScheduleID),
		textOrNil(n.Refs.PlaylistID), textOrNil(n.Refs.MediaAssetID),
		n.Priority, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetNotification fetches one notification by id, or ErrNotFound.
func (s *Store) GetNotification(ctx context.Context, id string) (n *models.Notification, err error) {
	defer func(start time.Time) { observe("get", "notifications", start, err) }(time.Now())

	n, err = scanNotification(s.pool.QueryRow(ctx, getNotificationSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListUndelivered returns the screen's pending notifications oldest first,
// without claiming them. The stream catch-up phase uses this and then
// claims row by row so an eviction mid-drain leaves unsent rows pending.
func (s *Store) ListUndelivered(ctx context.Context, screenID string, limit int) (ns []models.Notification, err error) {
	defer func(start time.Time) { observe("list_undelivered", "notifications", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, listUndeliveredSQL, screenID, limit)
	if err != nil {
		return nil, fmt.Errorf("list undelivered: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// ClaimNotificationDelivered attempts the NULL -> now claim on one row.
// Returns false when a concurrent path already owns the row (or it does
// not exist); the caller must then skip it, not resend.
func (s *Store) ClaimNotificationDelivered(ctx context.Context, id string, now time.Time) (claimed bool, err error) {
	defer func(start time.Time) { observe("claim", "notifications", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, claimNotificationSQL, id, now)
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimUndelivered is the poll path: it selects the screen's pending rows
// (optionally only those created after since), then claims each with the
// same conditional update in one batched round trip. Rows lost to a
// concurrent claimant are omitted from the result. Returned rows keep
// created_at order and carry DeliveredAt = now.
func (s *Store) ClaimUndelivered(ctx context.Context, screenID string, since *time.Time, now time.Time, limit int) (ns []models.Notification, err error) {
	defer func(start time.Time) { observe("claim_batch", "notifications", start, err) }(time.Now())

	var rows pgx.Rows
	if since != nil {
		rows, err = s.pool.Query(ctx, listUndeliveredSinceSQL, screenID, *since, limit)
	} else {
		rows, err = s.pool.Query(ctx, listUndeliveredSQL, screenID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list undelivered for claim: %w", err)
	}

	candidates, err := collectNotifications(rows)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for i := range candidates {
		batch.Queue(claimNotificationSQL, candidates[i].ID, now)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := results.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close claim batch: %w", cerr)
		}
	}()

	ns = make([]models.Notification, 0, len(candidates))
	for i := range candidates {
		tag, execErr := results.Exec()
		if execErr != nil {
			return nil, fmt.Errorf("claim notification %s: %w", candidates[i].ID, execErr)
		}
		if tag.RowsAffected() != 1 {
			continue // lost the race to a concurrent claimant
		}
		claimedAt := now
		candidates[i].DeliveredAt = &claimedAt
		ns = append(ns, candidates[i])
	}
	return ns, nil
}

// CountUndelivered reports how many notifications still await delivery to
// the screen. The heartbeat endpoint uses it for sync_recommended.
func (s *Store) CountUndelivered(ctx context.Context, screenID string) (n int64, err error) {
	defer func(start time.Time) { observe("count_undelivered", "notifications", start, err) }(time.Now())

	if err := s.pool.QueryRow(ctx, countUndeliveredSQL, screenID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count undelivered: %w", err)
	}
	return n, nil
}

func collectNotifications(rows pgx.Rows) ([]models.Notification, error) {
	defer rows.Close()

	ns := make([]models.Notification, 0, 8)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		ns = append(ns, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return ns, nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n     models.Notification
		ntype string
	)
	err := row.Scan(&n.ID, &n.ScreenID, &ntype, &n.Title, &n.Message,
		&n.Refs.ScheduleID, &n.Refs.PlaylistID, &n.Refs.MediaAssetID,
		&n.Priority, &n.CreatedAt, &n.DeliveredAt)
	if err != nil {
		return nil, err
	}
	n.NotificationType = models.NotificationType(ntype)
	return &n, nil
}
