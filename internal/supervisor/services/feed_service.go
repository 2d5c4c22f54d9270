// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package services

import (
	"context"
	"errors"
	"time"
)

// FeedServer matches the embedded NATS server lifecycle the wrapper
// needs. Satisfied by *notify.EmbeddedServer, which starts listening at
// construction time.
type FeedServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// ErrFeedServerDown reports that the embedded feed server stopped
// accepting connections. Returning it from Serve makes suture restart
// the messaging layer, which rebuilds the server.
var ErrFeedServerDown = errors.New("embedded feed server not running")

// FeedServerService supervises an already-running embedded feed server.
//
// The server has no blocking run loop to delegate to, so the service
// watches its health and holds it open until shutdown:
//
//  1. Periodically checks IsRunning, failing the service if the server died
//  2. On context cancellation, shuts the server down with the timeout
//
// Note the restart caveat: a FeedServer instance cannot be restarted
// once shut down. The supervisor's restart only helps when main
// constructs the service with a factory-fresh server, so the health
// probe exists mainly to surface the failure loudly rather than to
// heal it silently.
type FeedServerService struct {
	server          FeedServer
	probeInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
}

// NewFeedServerService creates a supervised wrapper around the embedded
// feed server.
func NewFeedServerService(server FeedServer, shutdownTimeout time.Duration) *FeedServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &FeedServerService{
		server:          server,
		probeInterval:   5 * time.Second,
		shutdownTimeout: shutdownTimeout,
		name:            "embedded-feed",
	}
}

// Serve implements suture.Service.
func (s *FeedServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				return ErrFeedServerDown
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *FeedServerService) String() string {
	return s.name
}
