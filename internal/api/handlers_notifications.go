// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/delivery"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
)

// StreamNotifications handles the SSE delivery channel
//
// @Summary Open the notification stream
// @Description Opens a Server-Sent Events stream for the authenticated screen. The server greets with a connected event, replays the undelivered backlog as content_update events, signals realtime_ready, then pushes live notifications with periodic pings. Opening a second stream for the same screen evicts the first.
// @Tags Notifications
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} models.APIResponse "Missing screen identity"
// @Failure 401 {object} models.APIResponse "Missing or invalid credential"
// @Failure 503 {object} models.APIResponse "Notification source unavailable"
// @Security BearerAuth
// @Router /notifications/stream [get]
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	screenID, deviceID, ok := h.deviceIdentity(w, r)
	if !ok {
		return
	}
	if h.source == nil {
		respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "notification source unavailable", nil)
		return
	}

	logging.Info().
		Str("screen_id", screenID).
		Str("device_id", deviceID).
		Msg("Notification stream opening")

	// NewEventWriter commits the 200 and the SSE headers; nothing after
	// this point can change the status code.
	writer := delivery.NewEventWriter(w, h.config.Delivery.WriteTimeout)
	session := delivery.NewSession(screenID, deviceID, h.store, h.source, h.registry, writer, delivery.SessionConfig{
		HeartbeatInterval: h.config.Delivery.HeartbeatInterval,
		CatchUpLimit:      h.config.Delivery.CatchUpLimit,
		WriteTimeout:      h.config.Delivery.WriteTimeout,
		BreakerFailures:   h.config.Delivery.BreakerFailures,
	})
	if h.wsHub != nil {
		session.SetEventSink(h.wsHub)
	}

	session.Run(r.Context())
}

// PollNotifications handles the polling fallback channel
//
// @Summary Poll for notifications and commands
// @Description Claims and returns the screen's undelivered notifications, the device's pending commands, and the scheduler-recommended next poll interval. Notifications returned here are marked delivered; a concurrent stream will not replay them.
// @Tags Notifications
// @Produce json
// @Param since query string false "Only notifications created after this RFC 3339 instant"
// @Success 200 {object} models.APIResponse{data=models.PollResponse} "Claimed notifications and pending commands"
// @Failure 400 {object} models.APIResponse "Bad since timestamp or missing identity"
// @Failure 401 {object} models.APIResponse "Missing or invalid credential"
// @Failure 503 {object} models.APIResponse "Transient store failure, nothing claimed"
// @Security BearerAuth
// @Router /notifications/poll [get]
func (h *Handler) PollNotifications(w http.ResponseWriter, r *http.Request) {
	screenID, deviceID, ok := h.deviceIdentity(w, r)
	if !ok {
		return
	}
	since, ok := getTimeParam(r, "since")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "since must be an RFC 3339 timestamp", nil)
		return
	}

	start := time.Now()
	now := h.now().UTC()
	ctx := r.Context()

	// The claim runs last: everything fallible before it leaves the
	// backlog untouched, so a 503 here never costs a notification.
	commands := []models.Command{}
	if deviceID != "" {
		var err error
		commands, err = h.dispatcher.ListPending(ctx, deviceID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
	}

	interval, err := h.effectiveInterval(ctx, screenID, now)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	notifications, err := h.store.ClaimUndelivered(ctx, screenID, since, now, h.config.Delivery.CatchUpLimit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	for range notifications {
		metrics.RecordNotificationDelivered("poll")
	}
	metrics.RecordPollRequest(len(notifications), interval)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.PollResponse{
			Notifications:          notifications,
			Commands:               commands,
			PollingIntervalSeconds: interval,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// effectiveInterval resolves the screen's tenant and asks the scheduler
// for the interval in force. Screens the store does not know yet (or
// mode-none screens that were never paired) get the default schedule.
func (h *Handler) effectiveInterval(ctx context.Context, screenID string, now time.Time) (int, error) {
	orgID := ""
	screen, err := h.store.GetScreen(ctx, screenID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// Unknown screen: default schedule.
	case err != nil:
		return 0, err
	default:
		orgID = screen.OrganizationID
	}

	return h.scheduler.EffectiveIntervalFor(ctx, orgID, now)
}
