// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockFeedServer is a test double for the FeedServer interface.
type mockFeedServer struct {
	running       atomic.Bool
	shutdownErr   error
	shutdownCount atomic.Int32
}

func newMockFeedServer() *mockFeedServer {
	m := &mockFeedServer{}
	m.running.Store(true)
	return m
}

func (m *mockFeedServer) IsRunning() bool {
	return m.running.Load()
}

func (m *mockFeedServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	m.running.Store(false)
	return m.shutdownErr
}

func TestFeedServerService_Interface(t *testing.T) {
	var _ suture.Service = (*FeedServerService)(nil)
}

func TestFeedServerService_Serve(t *testing.T) {
	t.Run("shuts server down on context cancellation", func(t *testing.T) {
		server := newMockFeedServer()
		svc := NewFeedServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if server.shutdownCount.Load() != 1 {
			t.Errorf("expected 1 Shutdown call, got %d", server.shutdownCount.Load())
		}
	})

	t.Run("fails when the server dies", func(t *testing.T) {
		server := newMockFeedServer()
		svc := NewFeedServerService(server, time.Second)
		svc.probeInterval = 10 * time.Millisecond

		server.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := svc.Serve(ctx)
		if !errors.Is(err, ErrFeedServerDown) {
			t.Errorf("expected ErrFeedServerDown, got %v", err)
		}
	})

	t.Run("propagates shutdown errors", func(t *testing.T) {
		server := newMockFeedServer()
		server.shutdownErr = errors.New("shutdown stuck")
		svc := NewFeedServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := svc.Serve(ctx)
		if err == nil || err.Error() != "shutdown stuck" {
			t.Errorf("expected shutdown error, got %v", err)
		}
	})
}

func TestFeedServerService_String(t *testing.T) {
	svc := NewFeedServerService(newMockFeedServer(), time.Second)
	if svc.String() != "embedded-feed" {
		t.Errorf("expected 'embedded-feed', got %q", svc.String())
	}
}

func TestNewFeedServerService_DefaultTimeout(t *testing.T) {
	svc := NewFeedServerService(newMockFeedServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", svc.shutdownTimeout)
	}
}
