// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/models"
)

func TestHeartbeat(t *testing.T) {
	t.Run("records the heartbeat and returns the interval", func(t *testing.T) {
		store := newFakeStore()
		store.addScreen(&models.Screen{ID: "scr-1", OrganizationID: "org-1"})
		h := newTestHandler(t, store)

		req := postJSON(deviceCtx("scr-1", "dev-1"), "/api/v1/devices/heartbeat",
			`{"status":"playing","system_info":{"cpu_percent":12.5}}`)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
		}
		var data models.HeartbeatResponse
		decodeEnvelope(t, rec, &data)
		if data.PollingIntervalSeconds != models.DefaultPollingIntervalSeconds {
			t.Fatalf("interval = %d, want default %d", data.PollingIntervalSeconds, models.DefaultPollingIntervalSeconds)
		}
		if data.SyncRecommended {
			t.Fatal("sync_recommended = true with an empty backlog")
		}

		screen := store.screens["scr-1"]
		if screen.LastSeenAt == nil {
			t.Fatal("last_seen_at not stamped")
		}
		if screen.LastHeartbeat["status"] != "playing" {
			t.Fatalf("last_heartbeat = %v", screen.LastHeartbeat)
		}
	})

	t.Run("recommends a sync when undelivered work exists", func(t *testing.T) {
		store := newFakeStore()
		store.addScreen(&models.Screen{ID: "scr-1", OrganizationID: "org-1"})
		store.addNotification(&models.Notification{
			ID:               "n-1",
			ScreenID:         "scr-1",
			NotificationType: models.NotificationPlaylistChange,
			Title:            "Playlist updated",
			CreatedAt:        time.Now().UTC(),
		})
		h := newTestHandler(t, store)

		req := postJSON(deviceCtx("scr-1", "dev-1"), "/api/v1/devices/heartbeat", `{"status":"idle"}`)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		var data models.HeartbeatResponse
		decodeEnvelope(t, rec, &data)
		if !data.SyncRecommended {
			t.Fatal("sync_recommended = false with one undelivered notification")
		}
	})

	t.Run("unknown screen is 404", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())

		req := postJSON(deviceCtx("scr-ghost", "dev-1"), "/api/v1/devices/heartbeat", `{"status":"idle"}`)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("mode none takes the screen from the body", func(t *testing.T) {
		store := newFakeStore()
		store.addScreen(&models.Screen{ID: "scr-1", OrganizationID: "org-1"})
		h := newTestHandler(t, store)

		req := postJSON(context.Background(), "/api/v1/devices/heartbeat",
			`{"screen_id":"scr-1","status":"idle"}`)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("no identity at all is 400", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/devices/heartbeat", nil)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("claims override a body screen id", func(t *testing.T) {
		store := newFakeStore()
		store.addScreen(&models.Screen{ID: "scr-1", OrganizationID: "org-1"})
		h := newTestHandler(t, store)

		// The body names a different screen; the token wins.
		req := postJSON(deviceCtx("scr-1", "dev-1"), "/api/v1/devices/heartbeat",
			`{"screen_id":"scr-other","status":"idle"}`)
		rec := httptest.NewRecorder()

		h.Heartbeat(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
		}
		if store.screens["scr-1"].LastSeenAt == nil {
			t.Fatal("token screen not touched")
		}
	})
}

func TestIssuePairingCode(t *testing.T) {
	t.Run("issues a six character code with expiry", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil)
		rec := httptest.NewRecorder()

		h.IssuePairingCode(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
		}
		var data models.PairingCodeResponse
		decodeEnvelope(t, rec, &data)
		if !validPairingCode(data.Code) {
			t.Fatalf("code = %q, want six chars of A-Z0-9", data.Code)
		}
		if data.ExpiresAt.IsZero() {
			t.Fatal("expires_at not set")
		}
		if _, ok := h.store.pairings[data.Code]; !ok {
			t.Fatal("code not stored")
		}
	})

	t.Run("retries on a code collision", func(t *testing.T) {
		store := newFakeStore()
		store.failOnce("InsertPairingCode", database.ErrDuplicateCode)
		h := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		h.IssuePairingCode(rec, httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 after regenerating\nbody: %s", rec.Code, rec.Body.String())
		}
		if len(store.pairings) != 1 {
			t.Fatalf("stored codes = %d, want 1", len(store.pairings))
		}
	})

	t.Run("non-collision store failure is not retried", func(t *testing.T) {
		store := newFakeStore()
		store.failOnce("InsertPairingCode", errors.New("connection refused"))
		h := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		h.IssuePairingCode(rec, httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if len(store.pairings) != 0 {
			t.Fatalf("stored codes = %d, want 0", len(store.pairings))
		}
	})

	t.Run("per-IP attempt limit answers 429", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())
		h.Handler.attempts.Stop()
		h.Handler.attempts = auth.NewAttemptLimiter(2)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			h.IssuePairingCode(rec, httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil))
			if rec.Code != http.StatusCreated {
				t.Fatalf("issue %d: %d", i+1, rec.Code)
			}
		}

		rec := httptest.NewRecorder()
		h.IssuePairingCode(rec, httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
		envelope := decodeEnvelope(t, rec, nil)
		if envelope.Error == nil || envelope.Error.Code != "RATE_LIMIT_EXCEEDED" {
			t.Fatalf("error = %+v", envelope.Error)
		}
	})
}

func TestCheckPairing(t *testing.T) {
	issue := func(t *testing.T, h *testHandler) string {
		t.Helper()
		rec := httptest.NewRecorder()
		h.IssuePairingCode(rec, httptest.NewRequest(http.MethodPost, "/api/v1/devices/pairing-code", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("issue: %d", rec.Code)
		}
		var data models.PairingCodeResponse
		decodeEnvelope(t, rec, &data)
		return data.Code
	}

	check := func(h *testHandler, code string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/check-pairing/"+code, nil)
		req = withURLParam(req, "code", code)
		rec := httptest.NewRecorder()
		h.CheckPairing(rec, req)
		return rec
	}

	t.Run("unclaimed code answers 202", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())
		code := issue(t, h)

		rec := check(h, code)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202\nbody: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("claimed code issues a working device token", func(t *testing.T) {
		store := newFakeStore()
		h := newTestHandler(t, store)
		code := issue(t, h)

		now := time.Now().UTC()
		if err := store.ClaimPairing(context.Background(), code, "scr-1", "dev-1", now); err != nil {
			t.Fatalf("claim: %v", err)
		}

		rec := check(h, code)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
		}
		var data models.PairingResultResponse
		decodeEnvelope(t, rec, &data)
		if data.ScreenID != "scr-1" || data.DeviceID != "dev-1" {
			t.Fatalf("identity = %+v", data)
		}
		if data.DeviceToken == "" {
			t.Fatal("device token empty")
		}

		claims, err := h.tokens.ValidateDeviceToken(data.DeviceToken)
		if err != nil {
			t.Fatalf("issued token rejected: %v", err)
		}
		if claims.ScreenID != "scr-1" || claims.DeviceID != "dev-1" {
			t.Fatalf("claims = %+v", claims)
		}
	})

	t.Run("lowercase input matches the stored code", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())
		code := issue(t, h)

		rec := check(h, strings.ToLower(code))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202 for lowercase form", rec.Code)
		}
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		h := newTestHandler(t, newFakeStore())

		rec := check(h, "ZZZZZZ")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed code is 404 without a store hit", func(t *testing.T) {
		store := newFakeStore()
		h := newTestHandler(t, store)
		// A store hit would surface this as a 503 instead of the 404.
		store.failOnce("GetPairing", errors.New("must not be called"))

		rec := check(h, "short")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("expired unclaimed code is 404", func(t *testing.T) {
		store := newFakeStore()
		h := newTestHandler(t, store)

		past := time.Now().UTC().Add(-time.Hour)
		store.pairings["ABC123"] = &models.DevicePairing{
			Code:      "ABC123",
			CreatedAt: past.Add(-5 * time.Minute),
			ExpiresAt: past,
		}

		rec := check(h, "ABC123")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("claim before expiry still collectable after", func(t *testing.T) {
		// A device that paired just inside the window must be able to
		// collect its token even if it polls again after expiry.
		store := newFakeStore()
		h := newTestHandler(t, store)

		now := time.Now().UTC()
		claimedAt := now.Add(-10 * time.Minute)
		store.pairings["ABC123"] = &models.DevicePairing{
			Code:      "ABC123",
			CreatedAt: now.Add(-20 * time.Minute),
			ExpiresAt: now.Add(-15 * time.Minute),
			ScreenID:  "scr-1",
			DeviceID:  "dev-1",
			ClaimedAt: &claimedAt,
		}

		rec := check(h, "ABC123")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for claimed code past expiry", rec.Code)
		}
	})
}
