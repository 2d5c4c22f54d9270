// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/config"
	"github.com/callboardhq/callboard/internal/delivery"
	"github.com/callboardhq/callboard/internal/dispatch"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/middleware"
	"github.com/callboardhq/callboard/internal/models"
	"github.com/callboardhq/callboard/internal/notify"
	"github.com/callboardhq/callboard/internal/polling"
	ws "github.com/callboardhq/callboard/internal/websocket"
)

// Store is the persistence surface the handlers reach directly. The
// command and notification lifecycles go through their services; this
// interface covers delivery claims, screen liveness, pairing, and the
// health probe. *database.Store satisfies it.
type Store interface {
	delivery.SessionStore

	ClaimUndelivered(ctx context.Context, screenID string, since *time.Time, now time.Time, limit int) ([]models.Notification, error)
	CountUndelivered(ctx context.Context, screenID string) (int64, error)

	GetScreen(ctx context.Context, id string) (*models.Screen, error)
	TouchScreenHeartbeat(ctx context.Context, screenID string, hb *models.Heartbeat, now time.Time) error

	InsertPairingCode(ctx context.Context, p *models.DevicePairing) error
	GetPairing(ctx context.Context, code string) (*models.DevicePairing, error)
	ClaimPairing(ctx context.Context, code, screenID, deviceID string, now time.Time) error
	UpsertDevice(ctx context.Context, d *models.Device) error

	Ping(ctx context.Context) error
}

// Handler contains dependencies for the API handlers.
//
// Handler methods are split across files by surface:
//   - handlers.go: Handler struct, constructor, websocket upgrader (this file)
//   - handlers_helpers.go: response envelope and parameter helpers
//   - handlers_commands.go: command enqueue and lifecycle reports
//   - handlers_notifications.go: SSE stream, notification publish, poll
//   - handlers_devices.go: heartbeat ingest and the pairing flow
//   - handlers_admin.go: polling schedules, emergency override, channels
//   - handlers_health.go: health probe
type Handler struct {
	store      Store
	dispatcher *dispatch.Dispatcher
	publisher  *notify.Publisher
	scheduler  *polling.Service
	registry   *delivery.Registry
	source     notify.NotificationSource
	tokens     *auth.TokenManager
	wsHub      *ws.Hub
	config     *config.Config

	attempts       *auth.AttemptLimiter
	trustedProxies map[string]bool
	seclog         *logging.SecurityLogger
	perfMon        *middleware.PerformanceMonitor
	feedUp         func() bool
	startTime      time.Time
	now            func() time.Time
}

// NewHandler wires the API handlers over the subsystem services.
//
// source feeds real-time notifications into SSE sessions; it is the NATS
// feed when the wake-up feed is enabled and the store poller otherwise.
// tokens may be nil only when auth mode is "none" (pairing then returns
// an empty device token). wsHub may be nil; dashboard broadcasts are
// skipped without it.
func NewHandler(
	store Store,
	dispatcher *dispatch.Dispatcher,
	publisher *notify.Publisher,
	scheduler *polling.Service,
	registry *delivery.Registry,
	source notify.NotificationSource,
	tokens *auth.TokenManager,
	wsHub *ws.Hub,
	cfg *config.Config,
) *Handler {
	trusted := make(map[string]bool, len(cfg.Security.TrustedProxies))
	for _, p := range cfg.Security.TrustedProxies {
		trusted[p] = true
	}

	return &Handler{
		store:          store,
		dispatcher:     dispatcher,
		publisher:      publisher,
		scheduler:      scheduler,
		registry:       registry,
		source:         source,
		tokens:         tokens,
		wsHub:          wsHub,
		config:         cfg,
		attempts:       auth.NewAttemptLimiter(cfg.Pairing.AttemptsPerMinute),
		trustedProxies: trusted,
		seclog:         logging.NewSecurityLogger(),
		perfMon:        middleware.NewPerformanceMonitor(1000, 500*time.Millisecond),
		startTime:      time.Now(),
		now:            time.Now,
	}
}

// SetFeedStatus wires the health probe for the wake-up feed. fn reports
// whether the feed connection is currently up.
func (h *Handler) SetFeedStatus(fn func() bool) {
	h.feedUp = fn
}

// Close releases handler-owned background resources.
func (h *Handler) Close() {
	if h.attempts != nil {
		h.attempts.Stop()
	}
}

// clientIP resolves the caller address, honoring forwarding headers only
// from configured proxies.
func (h *Handler) clientIP(r *http.Request) string {
	return auth.ClientIP(r, h.trustedProxies)
}

// deviceIdentity resolves the calling device. With auth on, identity
// comes from the token claims; in mode "none" the screen_id and
// device_id query parameters stand in. A false return means the 400 was
// already written.
func (h *Handler) deviceIdentity(w http.ResponseWriter, r *http.Request) (screenID, deviceID string, ok bool) {
	if claims, found := auth.DeviceFromContext(r.Context()); found {
		return claims.ScreenID, claims.DeviceID, true
	}

	screenID = r.URL.Query().Get("screen_id")
	deviceID = r.URL.Query().Get("device_id")
	if screenID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "screen_id is required", nil)
		return "", "", false
	}
	return screenID, deviceID, true
}

// getUpgrader creates the dashboard websocket upgrader. The handshake
// timeout guards against clients that open a socket and stall.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates dashboard websocket origins. Browser
// websockets always send Origin; an absent header means a non-browser
// client, which passed admin auth already and is allowed.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("Dashboard websocket rejected: origin not allowed")
	return false
}
