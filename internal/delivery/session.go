// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package delivery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
	"github.com/callboardhq/callboard/internal/notify"
)

// SessionState is a delivery session's lifecycle phase.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateCatchingUp
	StateStreaming
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateCatchingUp:
		return "catching_up"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session close reasons, recorded in metrics and logs.
const (
	CloseReasonDisconnected = "disconnected"
	CloseReasonEvicted      = "evicted"
	CloseReasonWriteError   = "write_error"
	CloseReasonStoreFailure = "store_failure"
	CloseReasonSourceEnded  = "source_ended"
	CloseReasonSourceError  = "source_error"
)

// SessionStore is the store slice a session needs: the undelivered
// backlog and the claim that marks a row delivered exactly once.
type SessionStore interface {
	ListUndelivered(ctx context.Context, screenID string, limit int) ([]models.Notification, error)
	ClaimNotificationDelivered(ctx context.Context, id string, now time.Time) (bool, error)
}

// EventSink receives connection lifecycle events for the admin
// dashboard feed. Implementations must not block.
type EventSink interface {
	ScreenConnected(screenID string)
	ScreenDisconnected(screenID string)
}

type noopSink struct{}

func (noopSink) ScreenConnected(string)    {}
func (noopSink) ScreenDisconnected(string) {}

// SessionConfig tunes one delivery session.
type SessionConfig struct {
	HeartbeatInterval time.Duration
	CatchUpLimit      int
	WriteTimeout      time.Duration
	BreakerFailures   uint32
}

// withDefaults normalizes the config. Heartbeats are pinned to the
// 30-60s band the devices expect.
func (c SessionConfig) withDefaults() SessionConfig {
	if c.HeartbeatInterval < 30*time.Second || c.HeartbeatInterval > 60*time.Second {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.CatchUpLimit <= 0 {
		c.CatchUpLimit = 100
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 3
	}
	return c
}

// ConnectedData is the payload of the connected event.
type ConnectedData struct {
	ScreenID   string `json:"screen_id"`
	ServerTime string `json:"server_time"`
}

// PingData is the payload of the ping heartbeat.
type PingData struct {
	NotificationsSent  int64  `json:"notifications_sent"`
	LastNotificationAt string `json:"last_notification_at,omitempty"`
}

// RealtimeReadyData is the payload of the realtime_ready event.
type RealtimeReadyData struct {
	CaughtUp int `json:"caught_up"`
}

// Session is one screen's live delivery channel. Create with NewSession
// and drive with Run; everything else happens through the registry and
// the context.
type Session struct {
	screenID string
	deviceID string
	store    SessionStore
	source   notify.NotificationSource
	registry *Registry
	writer   *EventWriter
	events   EventSink
	cfg      SessionConfig
	breaker  *gobreaker.CircuitBreaker[interface{}]
	now      func() time.Time

	// retryDelay spaces catch-up refetches after a store error.
	retryDelay time.Duration

	state        atomic.Int32
	sent         atomic.Int64
	lastSentNano atomic.Int64
	connectedAt  time.Time

	cancel      context.CancelFunc
	closeOnce   sync.Once
	closeReason string
}

// NewSession wires a session for one authenticated screen connection.
func NewSession(screenID, deviceID string, store SessionStore, source notify.NotificationSource, registry *Registry, writer *EventWriter, cfg SessionConfig) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		screenID:   screenID,
		deviceID:   deviceID,
		store:      store,
		source:     source,
		registry:   registry,
		writer:     writer,
		events:     noopSink{},
		cfg:        cfg,
		now:        time.Now,
		retryDelay: 500 * time.Millisecond,
	}
	s.state.Store(int32(StateConnecting))

	s.breaker = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "delivery-store",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Cancellation is shutdown, not store health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logging.Warn().
				Str("screen_id", screenID).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Session store breaker state changed")
		},
	})
	return s
}

// SetEventSink wires the admin dashboard feed. Call before Run.
func (s *Session) SetEventSink(sink EventSink) {
	if sink != nil {
		s.events = sink
	}
}

// Run drives the session to completion: register (evicting any previous
// channel), greet, replay the backlog, then stream until the client
// disconnects, the session is evicted, or a failure policy closes it.
// It blocks for the life of the connection.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel
	s.connectedAt = s.now().UTC()

	if evicted := s.registry.register(s.screenID, s); evicted != nil {
		logging.Info().Str("screen_id", s.screenID).Msg("Evicting previous delivery channel")
		evicted.close(CloseReasonEvicted)
	}
	metrics.TrackDeliverySession(true)
	s.events.ScreenConnected(s.screenID)
	defer s.finish()

	greeting := ConnectedData{
		ScreenID:   s.screenID,
		ServerTime: s.connectedAt.Format(time.RFC3339),
	}
	if err := s.writer.WriteEvent("", EventConnected, greeting); err != nil {
		s.closeWrite(err)
		return
	}

	// Subscribe before catch-up so nothing published in between is lost;
	// rows seen by both paths are settled by the claim.
	src, err := s.source.Subscribe(ctx, s.screenID)
	if err != nil {
		logging.Error().Err(err).Str("screen_id", s.screenID).Msg("Notification source subscribe failed")
		s.close(CloseReasonSourceError)
		return
	}

	s.setState(StateCatchingUp)
	caught, err := s.catchUp(ctx)
	if err != nil {
		return
	}
	if err := s.writer.WriteEvent("", EventRealtimeReady, RealtimeReadyData{CaughtUp: caught}); err != nil {
		s.closeWrite(err)
		return
	}
	metrics.RecordCatchUp(caught)

	s.setState(StateStreaming)
	s.stream(ctx, src)
}

// catchUp drains the undelivered backlog oldest-first, claiming then
// pushing each row. Returns the number pushed by this session; rows
// claimed by a concurrent poll in the meantime are skipped.
func (s *Session) catchUp(ctx context.Context) (int, error) {
	total := 0
	for {
		rows, err := s.listUndelivered(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			if s.breakerOpen() {
				s.closeStoreFailure(err)
				return total, err
			}
			if !s.pause(ctx) {
				return total, ctx.Err()
			}
			continue
		}
		if len(rows) == 0 {
			return total, nil
		}

		for i := range rows {
			pushed, err := s.deliver(ctx, &rows[i])
			if err != nil {
				return total, err
			}
			if pushed {
				total++
			}
		}
		if len(rows) < s.cfg.CatchUpLimit {
			return total, nil
		}
	}
}

// stream consumes the source until the session ends, heartbeating on
// the side.
func (s *Session) stream(ctx context.Context, src <-chan *models.Notification) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-src:
			if !ok {
				s.close(CloseReasonSourceEnded)
				return
			}
			if _, err := s.deliver(ctx, n); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.heartbeat(); err != nil {
				return
			}
		}
	}
}

// deliver claims the row and, if this session won, pushes it. A lost
// claim means another channel delivered it; a claim error leaves the row
// undelivered for a later path and feeds the breaker.
func (s *Session) deliver(ctx context.Context, n *models.Notification) (bool, error) {
	now := s.now().UTC()
	claimed, err := s.claim(ctx, n.ID, now)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if s.breakerOpen() {
			s.closeStoreFailure(err)
			return false, err
		}
		logging.Debug().Err(err).Str("notification_id", n.ID).Msg("Claim failed; row stays undelivered")
		return false, nil
	}
	if !claimed {
		metrics.RecordDeliveryConflict()
		return false, nil
	}

	delivered := *n
	delivered.DeliveredAt = &now
	if err := s.writer.WriteEvent(n.ID, EventContentUpdate, &delivered); err != nil {
		s.closeWrite(err)
		return false, err
	}

	s.sent.Add(1)
	s.lastSentNano.Store(now.UnixNano())
	metrics.RecordNotificationDelivered("stream")
	return true, nil
}

// heartbeat emits a ping carrying delivery counters. Dead peers surface
// here at the latest, via the write deadline.
func (s *Session) heartbeat() error {
	ping := PingData{NotificationsSent: s.sent.Load()}
	if nano := s.lastSentNano.Load(); nano > 0 {
		ping.LastNotificationAt = time.Unix(0, nano).UTC().Format(time.RFC3339)
	}
	if err := s.writer.WriteEvent("", EventPing, ping); err != nil {
		s.closeWrite(err)
		return err
	}
	metrics.RecordHeartbeat()
	return nil
}

func (s *Session) listUndelivered(ctx context.Context) ([]models.Notification, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListUndelivered(ctx, s.screenID, s.cfg.CatchUpLimit)
	})
	if err != nil {
		return nil, err
	}
	rows, _ := res.([]models.Notification)
	return rows, nil
}

func (s *Session) claim(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ClaimNotificationDelivered(ctx, id, now)
	})
	if err != nil {
		return false, err
	}
	claimed, _ := res.(bool)
	return claimed, nil
}

func (s *Session) breakerOpen() bool {
	return s.breaker.State() == gobreaker.StateOpen
}

// pause waits out the retry delay; false means the context ended first.
func (s *Session) pause(ctx context.Context) bool {
	t := time.NewTimer(s.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Session) closeWrite(err error) {
	metrics.RecordDeliveryWriteError()
	logging.Info().Err(err).Str("screen_id", s.screenID).Msg("Delivery write failed; closing session")
	s.close(CloseReasonWriteError)
}

func (s *Session) closeStoreFailure(err error) {
	logging.Warn().Err(err).Str("screen_id", s.screenID).Msg("Store breaker open; closing session for fresh reconnect")
	s.close(CloseReasonStoreFailure)
}

// close records the first close reason and cancels the session context.
// Safe to call from any goroutine, any number of times.
func (s *Session) close(reason string) {
	s.closeOnce.Do(func() {
		s.closeReason = reason
		s.setState(StateClosed)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// finish runs the terminal cleanup on the session goroutine.
func (s *Session) finish() {
	s.close(CloseReasonDisconnected)
	s.registry.deregister(s.screenID, s)
	metrics.TrackDeliverySession(false)
	metrics.RecordSessionClosed(s.closeReason)
	s.events.ScreenDisconnected(s.screenID)

	logging.Info().
		Str("screen_id", s.screenID).
		Str("reason", s.closeReason).
		Int64("notifications_sent", s.sent.Load()).
		Dur("session_duration", s.now().UTC().Sub(s.connectedAt)).
		Msg("Delivery session closed")
}

func (s *Session) setState(st SessionState) {
	s.state.Store(int32(st))
}

// State returns the session's current phase.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// info snapshots the session for the admin channels listing.
func (s *Session) info() ChannelInfo {
	ci := ChannelInfo{
		ScreenID:          s.screenID,
		DeviceID:          s.deviceID,
		State:             s.State().String(),
		ConnectedAt:       s.connectedAt,
		NotificationsSent: s.sent.Load(),
	}
	if nano := s.lastSentNano.Load(); nano > 0 {
		t := time.Unix(0, nano).UTC()
		ci.LastNotificationAt = &t
	}
	return ci
}
