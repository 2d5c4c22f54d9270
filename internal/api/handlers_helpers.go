// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/models"
	"github.com/callboardhq/callboard/internal/validation"
)

// maxBodyBytes caps request bodies. Command payloads and heartbeats are
// small; anything near this limit is abuse.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log
// injection attacks. Newlines, carriage returns, and other control
// characters could otherwise forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with the standard envelope headers.
// Everything on this surface is per-device or per-admin real-time state,
// so responses are never cacheable.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error envelope. err is for the server log only
// and never reaches the body; message is what the client sees.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// decodeJSONBody reads and unmarshals a bounded request body into v.
// A false return means the error response was already written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable request body", err)
		return false
	}
	if len(body) > maxBodyBytes {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body too large", nil)
		return false
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body required", nil)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed JSON body", err)
		return false
	}
	return true
}

// validateRequest validates a struct with go-playground/validator and
// converts the failure to the envelope error shape. Nil means valid.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

// getTimeParam parses an optional RFC 3339 query parameter. The bool
// reports a parse failure on a present value; an absent parameter is
// (nil, true).
func getTimeParam(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
