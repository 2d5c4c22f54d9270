// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/callboardhq/callboard/internal/auth"
	"github.com/callboardhq/callboard/internal/dispatch"
	"github.com/callboardhq/callboard/internal/models"
)

// EnqueueCommandRequest is the body of POST /commands.
type EnqueueCommandRequest struct {
	DeviceID       string                 `json:"device_id" validate:"required,max=128"`
	ScreenID       string                 `json:"screen_id" validate:"required,max=128"`
	CommandType    string                 `json:"command_type" validate:"required,max=64"`
	CommandData    map[string]interface{} `json:"command_data,omitempty"`
	Priority       int                    `json:"priority" validate:"min=0,max=100"`
	TimeoutSeconds int                    `json:"timeout_seconds" validate:"min=0,max=86400"`
}

// CompleteCommandRequest is the body of POST /commands/{id}/complete.
type CompleteCommandRequest struct {
	Result map[string]interface{} `json:"result,omitempty"`
}

// FailCommandRequest is the body of POST /commands/{id}/fail.
type FailCommandRequest struct {
	ErrorMessage string `json:"error_message" validate:"required,max=2000"`
}

// EnqueueCommand handles command creation
//
// @Summary Enqueue a command for a device
// @Description Durably stores a new pending command targeted at one device. Devices may enqueue only for themselves; admins may target any device.
// @Tags Commands
// @Accept json
// @Produce json
// @Param command body EnqueueCommandRequest true "Command to enqueue"
// @Success 201 {object} models.APIResponse{data=models.EnqueueCommandResponse} "Command stored as pending"
// @Failure 400 {object} models.APIResponse "Invalid command type or field"
// @Failure 401 {object} models.APIResponse "Missing or invalid credential"
// @Failure 403 {object} models.APIResponse "Device targeting another screen"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /commands [post]
func (h *Handler) EnqueueCommand(w http.ResponseWriter, r *http.Request) {
	var req EnqueueCommandRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	createdBy := ""
	if device, ok := auth.DeviceFromContext(r.Context()); ok {
		// Devices enqueue self-service work (restart-after-update
		// flows); they cannot reach across screens.
		if req.ScreenID != device.ScreenID || req.DeviceID != device.DeviceID {
			respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "devices may only enqueue commands for themselves", nil)
			return
		}
		createdBy = device.DeviceID
	} else if admin, ok := auth.AdminFromContext(r.Context()); ok {
		createdBy = admin.Username
	}

	cmd, err := h.dispatcher.Enqueue(r.Context(), dispatch.EnqueueRequest{
		DeviceID:       req.DeviceID,
		ScreenID:       req.ScreenID,
		CommandType:    models.CommandType(req.CommandType),
		CommandData:    req.CommandData,
		Priority:       req.Priority,
		TimeoutSeconds: req.TimeoutSeconds,
		CreatedBy:      createdBy,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data: models.EnqueueCommandResponse{
			CommandID: cmd.ID,
			Status:    cmd.Status,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// ListCommands handles pending command fetch
//
// @Summary List pending commands
// @Description Returns the device's pending commands in delivery order: priority ascending, oldest first within a band. Devices are scoped to their own queue; admins pass device_id explicitly.
// @Tags Commands
// @Produce json
// @Param device_id query string false "Target device (admin calls only; device tokens imply their own)"
// @Success 200 {object} models.APIResponse{data=models.CommandListResponse} "Pending commands"
// @Failure 400 {object} models.APIResponse "Missing device identity"
// @Failure 401 {object} models.APIResponse "Missing or invalid credential"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /commands [get]
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if device, ok := auth.DeviceFromContext(r.Context()); ok {
		deviceID = device.DeviceID
	}
	if deviceID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "device_id is required", nil)
		return
	}

	start := time.Now()
	cmds, err := h.dispatcher.ListPending(r.Context(), deviceID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.CommandListResponse{
			Commands: cmds,
			Count:    len(cmds),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AcknowledgeCommand handles the pending → acknowledged transition
//
// @Summary Acknowledge a command
// @Description Marks a pending command as received by the device. Acknowledging a command in any other state is a conflict.
// @Tags Commands
// @Produce json
// @Param id path string true "Command ID"
// @Success 200 {object} models.APIResponse{data=models.CommandStatusResponse} "Command acknowledged"
// @Failure 404 {object} models.APIResponse "Unknown command"
// @Failure 409 {object} models.APIResponse "Command not pending"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /commands/{id}/ack [post]
func (h *Handler) AcknowledgeCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.commandBelongsToCaller(w, r, id) {
		return
	}

	if err := h.dispatcher.Acknowledge(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondCommandStatus(w, id, models.CommandAcknowledged)
}

// CompleteCommand handles the terminal completed transition
//
// @Summary Complete a command
// @Description Records successful execution with an optional result payload. Re-completing a completed command succeeds without side effects, so devices can retry the report; completing a failed or timed-out command is a conflict.
// @Tags Commands
// @Accept json
// @Produce json
// @Param id path string true "Command ID"
// @Param report body CompleteCommandRequest false "Execution result"
// @Success 200 {object} models.APIResponse{data=models.CommandStatusResponse} "Command completed"
// @Failure 404 {object} models.APIResponse "Unknown command"
// @Failure 409 {object} models.APIResponse "Command failed or timed out"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /commands/{id}/complete [post]
func (h *Handler) CompleteCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.commandBelongsToCaller(w, r, id) {
		return
	}

	var req CompleteCommandRequest
	if r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &req) {
			return
		}
	}

	if err := h.dispatcher.Complete(r.Context(), id, req.Result); err != nil {
		respondDomainError(w, err)
		return
	}
	respondCommandStatus(w, id, models.CommandCompleted)
}

// FailCommand handles the terminal failed transition
//
// @Summary Fail a command
// @Description Records failed execution with the device-reported error message. Re-failing a failed command succeeds; failing a completed or timed-out command is a conflict.
// @Tags Commands
// @Accept json
// @Produce json
// @Param id path string true "Command ID"
// @Param report body FailCommandRequest true "Failure report"
// @Success 200 {object} models.APIResponse{data=models.CommandStatusResponse} "Command failed"
// @Failure 400 {object} models.APIResponse "Missing error message"
// @Failure 404 {object} models.APIResponse "Unknown command"
// @Failure 409 {object} models.APIResponse "Command completed or timed out"
// @Failure 503 {object} models.APIResponse "Transient store failure"
// @Security BearerAuth
// @Router /commands/{id}/fail [post]
func (h *Handler) FailCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.commandBelongsToCaller(w, r, id) {
		return
	}

	var req FailCommandRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.dispatcher.Fail(r.Context(), id, req.ErrorMessage); err != nil {
		respondDomainError(w, err)
		return
	}
	respondCommandStatus(w, id, models.CommandFailed)
}

// commandBelongsToCaller enforces device ownership of lifecycle reports.
// Admin callers and mode-none requests pass through; a device may only
// report on its own commands. A false return means the response was
// already written.
func (h *Handler) commandBelongsToCaller(w http.ResponseWriter, r *http.Request, id string) bool {
	device, ok := auth.DeviceFromContext(r.Context())
	if !ok {
		return true
	}

	cmd, err := h.dispatcher.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return false
	}
	if cmd.DeviceID != device.DeviceID {
		respondError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "command belongs to another device", nil)
		return false
	}
	return true
}

func respondCommandStatus(w http.ResponseWriter, id string, status models.CommandStatus) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.CommandStatusResponse{
			CommandID: id,
			Status:    status,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
