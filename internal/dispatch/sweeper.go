// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package dispatch

import (
	"context"
	"time"

	"github.com/callboardhq/callboard/internal/logging"
)

// TimeoutSweep is the slice of the dispatcher the sweeper drives.
type TimeoutSweep interface {
	SweepTimeouts(ctx context.Context) (int64, error)
}

// PairingPurger removes expired, unclaimed pairing codes. Optional.
type PairingPurger interface {
	PurgeExpiredPairings(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically times out overdue commands and purges stale
// pairing codes. It implements suture.Service so the supervision tree
// restarts it if the loop ever returns early.
//
// Every pass is a conditional bulk update, so overlapping runs from
// multiple instances are safe: each overdue row moves exactly once.
type Sweeper struct {
	sweep    TimeoutSweep
	purger   PairingPurger
	interval time.Duration
}

// NewSweeper creates a sweeper ticking at interval. purger may be nil
// when pairing housekeeping runs elsewhere.
func NewSweeper(sweep TimeoutSweep, purger PairingPurger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		sweep:    sweep,
		purger:   purger,
		interval: interval,
	}
}

// Serve implements suture.Service. It sweeps once immediately so a
// restart after downtime clears the backlog without waiting a full
// interval, then ticks until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", s.interval).Msg("Timeout sweeper started")

	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Timeout sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// String implements fmt.Stringer for supervision tree logging.
func (s *Sweeper) String() string {
	return "timeout-sweeper"
}

// pass runs one housekeeping round. Failures are logged and the next
// tick retries; a transient store error must not crash the service.
func (s *Sweeper) pass(ctx context.Context) {
	if _, err := s.sweep.SweepTimeouts(ctx); err != nil {
		logging.Warn().Err(err).Msg("Timeout sweep failed")
	}

	if s.purger == nil {
		return
	}
	purged, err := s.purger.PurgeExpiredPairings(ctx, time.Now().UTC())
	if err != nil {
		logging.Warn().Err(err).Msg("Pairing purge failed")
		return
	}
	if purged > 0 {
		logging.Debug().Int64("purged", purged).Msg("Expired pairing codes removed")
	}
}
