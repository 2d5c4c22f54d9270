// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import (
	"context"
	"time"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/models"
)

// UndeliveredLister is the store slice the poll source reads.
type UndeliveredLister interface {
	ListUndelivered(ctx context.Context, screenID string, limit int) ([]models.Notification, error)
}

// PollSource implements NotificationSource by polling the store for
// undelivered rows. It is the broker-free fallback with the same
// contract as FeedSource, at the cost of the poll interval in latency.
type PollSource struct {
	store    UndeliveredLister
	interval time.Duration
	batch    int
}

// NewPollSource creates a poll source ticking at interval. Intervals
// outside the useful 1-30s band are pulled to 3s.
func NewPollSource(store UndeliveredLister, interval time.Duration, batch int) *PollSource {
	if interval < time.Second || interval > 30*time.Second {
		interval = 3 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	return &PollSource{store: store, interval: interval, batch: batch}
}

// Subscribe starts a poll loop for the screen. The first fetch runs on
// the first tick, not immediately: session catch-up has just drained the
// backlog, so an instant poll would only re-surface rows in flight.
func (s *PollSource) Subscribe(ctx context.Context, screenID string) (<-chan *models.Notification, error) {
	out := make(chan *models.Notification, sourceBuffer)
	go s.loop(ctx, screenID, out)
	return out, nil
}

func (s *PollSource) loop(ctx context.Context, screenID string, out chan<- *models.Notification) {
	defer close(out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Rows surfaced recently, so a slow consumer claim does not make the
	// next tick repeat them. Entries age out after a few intervals; once
	// claimed, rows leave ListUndelivered on their own.
	seen := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.poll(ctx, screenID, seen, out) {
				return
			}
		}
	}
}

// poll fetches one batch and forwards unseen rows. Returns false when
// the subscription should end.
func (s *PollSource) poll(ctx context.Context, screenID string, seen map[string]time.Time, out chan<- *models.Notification) bool {
	rows, err := s.store.ListUndelivered(ctx, screenID, s.batch)
	if err != nil {
		// Transient store trouble: skip this tick. The session's own
		// store breaker decides when failures should end the session.
		logging.Debug().Err(err).Str("screen_id", screenID).Msg("Notification poll failed")
		return true
	}

	now := time.Now()
	for id, at := range seen {
		if now.Sub(at) > 4*s.interval {
			delete(seen, id)
		}
	}

	for i := range rows {
		n := rows[i]
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = now

		select {
		case out <- &n:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
