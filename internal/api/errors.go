// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/dispatch"
	"github.com/callboardhq/callboard/internal/notify"
	"github.com/callboardhq/callboard/internal/polling"
)

// respondDomainError maps a service-layer failure onto the response
// envelope. This is the single place sentinel errors become status codes;
// handlers call it instead of inspecting errors themselves.
//
// Anything unrecognized is treated as a transient store failure: the
// caller retries with backoff and the raw error stays in the server log,
// not the response body.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dispatch.ErrInvalidCommandType):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)

	case errors.Is(err, notify.ErrInvalidNotification):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)

	case errors.Is(err, polling.ErrInvalidConfiguration):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)

	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)

	case errors.Is(err, database.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), err)

	case errors.Is(err, database.ErrAlreadyClaimed):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", "pairing code already claimed", err)

	case errors.Is(err, database.ErrCodeExpired):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "pairing code expired", nil)

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away or the request deadline hit; a 503 tells
		// retrying callers nothing is permanently wrong.
		respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "request canceled", nil)

	default:
		respondError(w, http.StatusServiceUnavailable, "STORE_ERROR", "transient store failure, retry with backoff", err)
	}
}
