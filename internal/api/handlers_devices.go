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

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
)

// HeartbeatRequest is the body of POST /devices/heartbeat. ScreenID is
// honored only in auth mode "none"; with tokens on, identity comes from
// the claims.
type HeartbeatRequest struct {
	ScreenID   string                 `json:"screen_id,omitempty" validate:"max=128"`
	Status     string                 `json:"status,omitempty" validate:"max=64"`
	SystemInfo map[string]interface{} `json:"system_info,omitempty"`
}

// pairingCodeRetries bounds regeneration on the astronomically unlikely
// code collision.
const pairingCodeRetries = 5

// Heartbeat handles device liveness ingest
//
// @Summary Report device heartbeat
// @Description Stamps the screen's last_seen_at, stores the reported system info for dashboard display, and returns the polling interval in force plus whether undelivered work makes an immediate sync worthwhile.
// @Tags Devices
// @Accept json
// @Produce json
// @Param heartbeat body HeartbeatRequest false "Device status payload"
// @Success 200 {object} models.APIResponse{data=models.HeartbeatResponse} "Heartbeat recorded"
// @Failure 400 {object} models.APIResponse "Missing screen identity"
// @Failure 401 {object} models.APIResponse "Missing or invalid credential"
// @Failure 404 {object} models.APIResponse "Unknown screen"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /devices/heartbeat [post]
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req HeartbeatRequest
	if r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if apiErr := validateRequest(&req); apiErr != nil {
			respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
			return
		}
	}

	screenID := req.ScreenID
	if claims, ok := auth.DeviceFromContext(r.Context()); ok {
		screenID = claims.ScreenID
	}
	if screenID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "screen_id is required", nil)
		return
	}

	ctx := r.Context()
	now := h.now().UTC()

	hb := &models.Heartbeat{Status: req.Status, SystemInfo: req.SystemInfo}
	if err := h.store.TouchScreenHeartbeat(ctx, screenID, hb, now); err != nil {
		respondDomainError(w, err)
		return
	}
	metrics.RecordHeartbeat()

	interval, err := h.effectiveInterval(ctx, screenID, now)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	undelivered, err := h.store.CountUndelivered(ctx, screenID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HeartbeatResponse{
			PollingIntervalSeconds: interval,
			SyncRecommended:        undelivered > 0,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// IssuePairingCode handles pairing code generation
//
// @Summary Request a pairing code
// @Description Issues a short-lived six-character code for a factory-fresh device to display. An admin later claims the code for a screen; the device polls check-pairing until then. Unauthenticated, per-IP rate limited.
// @Tags Pairing
// @Produce json
// @Success 201 {object} models.APIResponse{data=models.PairingCodeResponse} "Code issued"
// @Failure 429 {object} models.APIResponse "Attempt budget exhausted"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Router /devices/pairing-code [post]
func (h *Handler) IssuePairingCode(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.attempts.Allow(ip) {
		h.seclog.LogRateLimited(ip, r.URL.Path)
		metrics.RecordRateLimitHit(r.URL.Path)
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many pairing requests", nil)
		return
	}

	now := h.now().UTC()
	pairing := &models.DevicePairing{
		CreatedAt: now,
		ExpiresAt: now.Add(h.config.Pairing.CodeTTL),
	}

	var err error
	for attempt := 0; attempt < pairingCodeRetries; attempt++ {
		pairing.Code, err = auth.GeneratePairingCode()
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "could not generate pairing code", err)
			return
		}
		err = h.store.InsertPairingCode(r.Context(), pairing)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrDuplicateCode) {
			respondDomainError(w, err)
			return
		}
	}
	if err != nil {
		// Five collisions in a row means the table is saturated with
		// live codes, which a 36^6 space should never reach.
		respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "could not allocate a pairing code", err)
		return
	}

	h.seclog.LogPairingCodeIssued("", pairing.Code, ip)

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: models.PairingCodeResponse{
			Code:      pairing.Code,
			ExpiresAt: pairing.ExpiresAt,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// CheckPairing handles the device's pairing poll
//
// @Summary Check pairing status
// @Description Polled by the device showing a pairing code. Until an admin claims the code the response is 202; once claimed, the device receives its bearer token and identity. Unknown, malformed, and expired codes all answer 404 so the endpoint leaks nothing to enumeration.
// @Tags Pairing
// @Produce json
// @Param code path string true "Pairing code shown on the device"
// @Success 200 {object} models.APIResponse{data=models.PairingResultResponse} "Claimed; device credentials issued"
// @Success 202 {object} models.APIResponse "Not yet claimed"
// @Failure 404 {object} models.APIResponse "Unknown or expired code"
// @Failure 429 {object} models.APIResponse "Attempt budget exhausted"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Router /devices/check-pairing/{code} [get]
func (h *Handler) CheckPairing(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.attempts.Allow(ip) {
		h.seclog.LogRateLimited(ip, r.URL.Path)
		metrics.RecordRateLimitHit(r.URL.Path)
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many pairing requests", nil)
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))
	if !validPairingCode(code) {
		h.seclog.LogPairingFailure(code, ip, r.UserAgent(), "malformed")
		respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown pairing code", nil)
		return
	}

	pairing, err := h.store.GetPairing(r.Context(), code)
	if errors.Is(err, database.ErrNotFound) {
		h.seclog.LogPairingFailure(code, ip, r.UserAgent(), "unknown")
		respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown pairing code", nil)
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	now := h.now().UTC()
	if pairing.Expired(now) && !pairing.Claimed() {
		h.seclog.LogPairingFailure(code, ip, r.UserAgent(), "expired")
		respondError(w, http.StatusNotFound, "NOT_FOUND", "pairing code expired", nil)
		return
	}

	if !pairing.Claimed() {
		respondJSON(w, http.StatusAccepted, &models.APIResponse{
			Status:   "success",
			Data:     map[string]interface{}{"paired": false},
			Metadata: models.Metadata{Timestamp: time.Now()},
		})
		return
	}

	token := ""
	if h.tokens != nil {
		token, err = h.tokens.IssueDeviceToken(pairing.ScreenID, pairing.DeviceID)
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "could not issue device token", err)
			return
		}
		h.seclog.LogTokenIssued(pairing.ScreenID, pairing.DeviceID)
	}

	logging.Info().
		Str("screen_id", pairing.ScreenID).
		Str("device_id", pairing.DeviceID).
		Msg("Device collected pairing result")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.PairingResultResponse{
			DeviceToken: token,
			DeviceID:    pairing.DeviceID,
			ScreenID:    pairing.ScreenID,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// validPairingCode checks the fixed shape: six characters from A-Z0-9.
func validPairingCode(code string) bool {
	if len(code) != models.PairingCodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
