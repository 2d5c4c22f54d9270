// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package validation

import (
	"strings"
	"testing"
)

type enqueueRequest struct {
	DeviceID       string `validate:"required,uuid"`
	ScreenID       string `validate:"required"`
	CommandType    string `validate:"required,commandtype"`
	Priority       int    `validate:"min=0,max=100"`
	TimeoutSeconds int    `validate:"omitempty,min=5,max=86400"`
}

type timePeriodRequest struct {
	Name            string `validate:"required"`
	Start           string `validate:"required,datetime=15:04"`
	End             string `validate:"required,datetime=15:04"`
	IntervalSeconds int    `validate:"gte=5,lte=3600"`
}

func validEnqueueRequest() enqueueRequest {
	return enqueueRequest{
		DeviceID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		ScreenID:       "screen-1",
		CommandType:    "restart",
		Priority:       5,
		TimeoutSeconds: 300,
	}
}

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := validEnqueueRequest()
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid request, got: %v", err)
	}
}

func TestValidateStructCommandType(t *testing.T) {
	tests := []struct {
		name        string
		commandType string
		wantValid   bool
	}{
		{"restart", "restart", true},
		{"reboot", "reboot", true},
		{"sync content", "sync_content", true},
		{"update power schedule", "update_power_schedule", true},
		{"emergency message", "emergency_message", true},
		{"unknown type", "explode", false},
		{"uppercase rejected", "RESTART", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validEnqueueRequest()
			req.CommandType = tt.commandType

			err := ValidateStruct(&req)
			if tt.wantValid && err != nil {
				t.Errorf("expected %q to validate, got: %v", tt.commandType, err)
			}
			if !tt.wantValid && err == nil {
				t.Errorf("expected %q to fail validation", tt.commandType)
			}
		})
	}
}

func TestValidateStructDeviceID(t *testing.T) {
	t.Parallel()

	req := validEnqueueRequest()
	req.DeviceID = "not-a-uuid"

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected UUID validation failure")
	}
	if !strings.Contains(err.Error(), "DeviceID must be a valid UUID") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateStructTimeoutBounds(t *testing.T) {
	t.Parallel()

	req := validEnqueueRequest()
	req.TimeoutSeconds = 2

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected timeout bound failure")
	}
	if !strings.Contains(err.Error(), "TimeoutSeconds must be at least 5") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateStructTimePeriod(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		wantValid bool
	}{
		{"valid time", "09:00", true},
		{"midnight", "00:00", true},
		{"late evening", "23:59", true},
		{"no minutes", "09", false},
		{"out of range hour", "25:00", false},
		{"seconds not allowed", "09:00:00", false},
		{"garbage", "morning", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := timePeriodRequest{
				Name:            "business_hours",
				Start:           tt.start,
				End:             "17:00",
				IntervalSeconds: 60,
			}

			err := ValidateStruct(&req)
			if tt.wantValid && err != nil {
				t.Errorf("expected %q to validate, got: %v", tt.start, err)
			}
			if !tt.wantValid && err == nil {
				t.Errorf("expected %q to fail validation", tt.start)
			}
		})
	}
}

func TestValidateStructNotificationType(t *testing.T) {
	t.Parallel()

	type publishRequest struct {
		Type string `validate:"required,notificationtype"`
	}

	if err := ValidateStruct(&publishRequest{Type: "playlist_change"}); err != nil {
		t.Errorf("expected playlist_change to validate: %v", err)
	}
	if err := ValidateStruct(&publishRequest{Type: "carrier_pigeon"}); err == nil {
		t.Error("expected carrier_pigeon to fail validation")
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	t.Parallel()

	req := validEnqueueRequest()
	req.CommandType = "bogus"

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "CommandType" {
		t.Errorf("expected field CommandType, got %v", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	t.Parallel()

	req := enqueueRequest{} // everything missing

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple field errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields detail for multi-error response")
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}
