// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/delivery"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
	"github.com/callboardhq/callboard/internal/notify"
	ws "github.com/callboardhq/callboard/internal/websocket"
)

// PollingConfigRequest is the body of PUT /admin/polling-config. The
// emergency flag itself is owned by the override endpoint; this request
// sets the schedule and the override's parameters only.
type PollingConfigRequest struct {
	OrganizationID           string              `json:"organization_id,omitempty" validate:"max=128"`
	Timezone                 string              `json:"timezone" validate:"required,max=64"`
	TimePeriods              []models.TimePeriod `json:"time_periods" validate:"max=48"`
	EmergencyIntervalSeconds int                 `json:"emergency_interval_seconds" validate:"min=0,max=3600"`
	EmergencyTimeoutHours    int                 `json:"emergency_timeout_hours" validate:"min=0,max=168"`
}

// EmergencyOverrideRequest is the body of POST /admin/emergency-override.
type EmergencyOverrideRequest struct {
	Action         string `json:"action" validate:"required,oneof=activate deactivate"`
	OrganizationID string `json:"organization_id" validate:"required,max=128"`
}

// PairScreenRequest is the body of POST /admin/screens/{screen_id}/pair.
type PairScreenRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// PublishNotificationRequest is the body of POST /admin/notifications.
type PublishNotificationRequest struct {
	ScreenID string                  `json:"screen_id" validate:"required,max=128"`
	Type     string                  `json:"notification_type" validate:"required,max=64"`
	Title    string                  `json:"title" validate:"required,max=256"`
	Message  string                  `json:"message,omitempty" validate:"max=4000"`
	Refs     models.NotificationRefs `json:"refs,omitempty"`
	Priority int                     `json:"priority" validate:"min=0,max=100"`
}

// ChannelListResponse is the body of GET /admin/channels.
type ChannelListResponse struct {
	Channels []delivery.ChannelInfo `json:"channels"`
	Count    int                    `json:"count"`
}

// organizationID resolves the tenant for admin schedule endpoints: the
// query parameter wins, a body value backs it up.
func organizationID(r *http.Request, bodyValue string) string {
	if q := r.URL.Query().Get("organization_id"); q != "" {
		return q
	}
	return bodyValue
}

// GetPollingConfig handles schedule reads
//
// @Summary Get a tenant's polling schedule
// @Description Returns the stored polling configuration for one organization. The emergency flag is reported as stored; the override endpoint computes the lazily-expired view.
// @Tags Admin
// @Produce json
// @Param organization_id query string true "Tenant"
// @Success 200 {object} models.APIResponse{data=models.PollingConfiguration} "Stored schedule"
// @Failure 400 {object} models.APIResponse "Missing organization_id"
// @Failure 404 {object} models.APIResponse "Tenant never configured"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/polling-config [get]
func (h *Handler) GetPollingConfig(w http.ResponseWriter, r *http.Request) {
	orgID := organizationID(r, "")
	if orgID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "organization_id is required", nil)
		return
	}

	cfg, err := h.scheduler.Configuration(r.Context(), orgID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     cfg,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// UpdatePollingConfig handles schedule writes
//
// @Summary Update a tenant's polling schedule
// @Description Validates and stores the timezone, time periods, and emergency parameters for one organization. An active emergency override survives the write; a lapsed one is cleared by the write-path touch.
// @Tags Admin
// @Accept json
// @Produce json
// @Param organization_id query string false "Tenant (body value used when absent)"
// @Param schedule body PollingConfigRequest true "Schedule to store"
// @Success 200 {object} models.APIResponse{data=models.PollingConfiguration} "Stored schedule"
// @Failure 400 {object} models.APIResponse "Schedule rejected by validation"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/polling-config [put]
func (h *Handler) UpdatePollingConfig(w http.ResponseWriter, r *http.Request) {
	var req PollingConfigRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	orgID := organizationID(r, req.OrganizationID)
	if orgID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "organization_id is required", nil)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	cfg := &models.PollingConfiguration{
		OrganizationID:           orgID,
		Timezone:                 req.Timezone,
		TimePeriods:              req.TimePeriods,
		EmergencyIntervalSeconds: req.EmergencyIntervalSeconds,
		EmergencyTimeoutHours:    req.EmergencyTimeoutHours,
	}

	// The upsert writes the whole row, so an active override must be
	// carried over or this PUT would silently end an emergency.
	existing, err := h.scheduler.Configuration(ctx, orgID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// First configuration for this tenant.
	case err != nil:
		respondDomainError(w, err)
		return
	default:
		cfg.EmergencyOverride = existing.EmergencyOverride
		cfg.EmergencyStartedAt = existing.EmergencyStartedAt
	}

	if err := h.scheduler.UpdateConfiguration(ctx, cfg, now); err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Info().
		Str("organization_id", orgID).
		Int("time_periods", len(cfg.TimePeriods)).
		Msg("Polling schedule updated")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     cfg,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// EmergencyOverride handles override changes
//
// @Summary Activate or deactivate the emergency override
// @Description Forces every screen of the organization onto the emergency polling interval until the configured window lapses or an explicit deactivate. Re-activating restarts the window. The computed state is broadcast to dashboard websockets.
// @Tags Admin
// @Accept json
// @Produce json
// @Param override body EmergencyOverrideRequest true "Action and tenant"
// @Success 200 {object} models.APIResponse{data=models.EmergencyState} "Computed override window"
// @Failure 400 {object} models.APIResponse "Unknown action"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/emergency-override [post]
func (h *Handler) EmergencyOverride(w http.ResponseWriter, r *http.Request) {
	var req EmergencyOverrideRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	var state *models.EmergencyState
	var err error
	if req.Action == "activate" {
		state, err = h.scheduler.ActivateEmergency(ctx, req.OrganizationID, now)
	} else {
		state, err = h.scheduler.DeactivateEmergency(ctx, req.OrganizationID, now)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if h.wsHub != nil {
		h.wsHub.EmergencyChanged(state)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     state,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// GetEmergencyState handles override reads
//
// @Summary Get the computed emergency override state
// @Description Returns the override as devices experience it: a stored flag past its window reports inactive with zero remaining seconds.
// @Tags Admin
// @Produce json
// @Param organization_id query string true "Tenant"
// @Success 200 {object} models.APIResponse{data=models.EmergencyState} "Computed override window"
// @Failure 400 {object} models.APIResponse "Missing organization_id"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/emergency-override [get]
func (h *Handler) GetEmergencyState(w http.ResponseWriter, r *http.Request) {
	orgID := organizationID(r, "")
	if orgID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "organization_id is required", nil)
		return
	}

	state, err := h.scheduler.EmergencyState(r.Context(), orgID, h.now().UTC())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     state,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PairScreen handles the admin side of pairing
//
// @Summary Claim a pairing code for a screen
// @Description Attaches the code a device is displaying to the given screen and provisions the device row. The device collects its token on its next check-pairing poll. A code can be claimed exactly once.
// @Tags Admin
// @Accept json
// @Produce json
// @Param screen_id path string true "Screen to pair"
// @Param claim body PairScreenRequest true "Code shown on the device"
// @Success 200 {object} models.APIResponse{data=models.Device} "Device provisioned"
// @Failure 400 {object} models.APIResponse "Malformed code"
// @Failure 404 {object} models.APIResponse "Unknown screen, unknown or expired code"
// @Failure 409 {object} models.APIResponse "Code already claimed"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/screens/{screen_id}/pair [post]
func (h *Handler) PairScreen(w http.ResponseWriter, r *http.Request) {
	screenID := chi.URLParam(r, "screen_id")

	var req PairScreenRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	code := strings.ToUpper(req.Code)

	ctx := r.Context()
	now := h.now().UTC()

	if _, err := h.store.GetScreen(ctx, screenID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown screen", nil)
			return
		}
		respondDomainError(w, err)
		return
	}

	deviceID := uuid.NewString()
	if err := h.store.ClaimPairing(ctx, code, screenID, deviceID, now); err != nil {
		metrics.RecordPairingClaim(false)
		respondDomainError(w, err)
		return
	}

	device := &models.Device{ID: deviceID, ScreenID: screenID, PairedAt: &now}
	if err := h.store.UpsertDevice(ctx, device); err != nil {
		respondDomainError(w, err)
		return
	}

	metrics.RecordPairingClaim(true)
	h.seclog.LogPairingClaimed(screenID, deviceID, code, h.clientIP(r))

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     device,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PublishNotification handles admin notification publishes
//
// @Summary Publish a notification to a screen
// @Description Durably records a content-change notification for one screen and announces it on the wake-up feed. The screen receives it over its live stream immediately or on its next poll.
// @Tags Admin
// @Accept json
// @Produce json
// @Param notification body PublishNotificationRequest true "Notification to publish"
// @Success 201 {object} models.APIResponse{data=models.Notification} "Notification stored"
// @Failure 400 {object} models.APIResponse "Invalid type or missing field"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /admin/notifications [post]
func (h *Handler) PublishNotification(w http.ResponseWriter, r *http.Request) {
	var req PublishNotificationRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	n, err := h.publisher.Publish(r.Context(), notify.PublishRequest{
		ScreenID: req.ScreenID,
		Type:     models.NotificationType(req.Type),
		Title:    req.Title,
		Message:  req.Message,
		Refs:     req.Refs,
		Priority: req.Priority,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status:   "success",
		Data:     n,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// ListChannels handles live channel inspection
//
// @Summary List live delivery channels
// @Description Returns a snapshot of every open notification stream: screen, device, session state, connect time, and delivery counters, sorted by screen.
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse{data=ChannelListResponse} "Open channels"
// @Security BearerAuth
// @Router /admin/channels [get]
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels := h.registry.Snapshot()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: ChannelListResponse{
			Channels: channels,
			Count:    len(channels),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Performance handles the request timing snapshot
//
// @Summary Get recent API performance statistics
// @Description Returns per-route aggregates and the most recent samples from the in-memory timing window. Long-horizon numbers live in Prometheus; this answers "what is slow right now".
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse "Aggregated route timings"
// @Security BearerAuth
// @Router /admin/performance [get]
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"endpoints": h.perfMon.Stats(),
			"recent":    h.perfMon.Recent(20),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// DashboardWS handles dashboard websocket upgrades
//
// @Summary Open the dashboard event feed
// @Description Upgrades to a websocket carrying subsystem lifecycle events: screen_connected, screen_disconnected, command_status, notification_published, emergency_changed. The feed is advisory and lossy; reconnecting dashboards refetch state over REST.
// @Tags Admin
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse "Hub not running"
// @Security BearerAuth
// @Router /admin/ws [get]
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "dashboard feed unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("Dashboard websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()

	if admin, ok := auth.AdminFromContext(r.Context()); ok {
		logging.Info().
			Str("username", admin.Username).
			Uint64("client_id", client.ID()).
			Msg("Dashboard websocket connected")
	}
}
