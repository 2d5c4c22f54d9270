// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweep struct {
	calls atomic.Int64
	err   error
}

func (c *countingSweep) SweepTimeouts(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, c.err
}

type countingPurger struct {
	calls atomic.Int64
}

func (c *countingPurger) PurgeExpiredPairings(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 1, nil
}

func TestSweeperServe(t *testing.T) {
	t.Run("sweeps immediately and then on each tick", func(t *testing.T) {
		sweep := &countingSweep{}
		purger := &countingPurger{}
		s := NewSweeper(sweep, purger, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Serve(ctx) }()

		deadline := time.After(2 * time.Second)
		for sweep.calls.Load() < 3 {
			select {
			case <-deadline:
				t.Fatalf("only %d sweeps before deadline", sweep.calls.Load())
			case <-time.After(5 * time.Millisecond):
			}
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("Serve returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancel")
		}

		if purger.calls.Load() == 0 {
			t.Fatal("purger never invoked")
		}
	})

	t.Run("keeps ticking through sweep failures", func(t *testing.T) {
		sweep := &countingSweep{err: errors.New("store offline")}
		s := NewSweeper(sweep, nil, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Serve(ctx) }()

		deadline := time.After(2 * time.Second)
		for sweep.calls.Load() < 2 {
			select {
			case <-deadline:
				t.Fatal("sweeper stopped after a failure")
			case <-time.After(5 * time.Millisecond):
			}
		}
		cancel()
		<-done
	})

	t.Run("defaults a non-positive interval", func(t *testing.T) {
		s := NewSweeper(&countingSweep{}, nil, 0)
		if s.interval != 30*time.Second {
			t.Fatalf("interval = %v, want 30s default", s.interval)
		}
	})
}

func TestSweeperString(t *testing.T) {
	s := NewSweeper(&countingSweep{}, nil, time.Second)
	if s.String() != "timeout-sweeper" {
		t.Fatalf("String() = %q", s.String())
	}
}
