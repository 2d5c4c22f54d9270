// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package validation provides request validation for API inputs using
// go-playground/validator with domain-specific validators for command
// and notification types.
//
// # Overview
//
// All mutating API endpoints validate their request bodies before any
// store access. Validation failures are translated into structured
// API errors (code VALIDATION_ERROR) with human-readable messages and
// per-field details, so devices and the admin UI can surface them
// without parsing free-form text.
//
// # Quick Start
//
// Tag request structs with validate tags and call ValidateStruct:
//
//	type EnqueueCommandRequest struct {
//		CommandType    string `json:"command_type" validate:"required,commandtype"`
//		Priority       int    `json:"priority" validate:"min=0,max=100"`
//		TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=5,max=86400"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//		api.RespondError(w, r, http.StatusBadRequest, err.ToAPIError())
//		return
//	}
//
// # Custom Validators
//
// Beyond the standard tags, the package registers:
//
//   - commandtype: the value must be one of the closed set of device
//     command types (restart, sync_content, emergency_message, ...)
//   - notificationtype: the value must be a known notification type
//     (playlist_change, content_ready, schedule_change, ...)
//
// Time-of-day fields on polling time periods use the standard
// datetime tag with the 15:04 layout, matching the HH:MM wire format.
//
// # Error Translation
//
// ValidateStruct returns a *RequestValidationError wrapping one entry
// per failed field. Each entry carries the field name, the violated
// tag, and a translated message. ToAPIError flattens the error into
// the models.APIError shape used by all handlers.
package validation
