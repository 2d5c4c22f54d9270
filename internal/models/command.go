// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package models

import (
	"time"
)

// CommandType identifies the operation a device is asked to perform.
// The set is closed: enqueueing any other value is a validation error.
type CommandType string

const (
	CommandRestart             CommandType = "restart"
	CommandRestartContent      CommandType = "restart_content"
	CommandReboot              CommandType = "reboot"
	CommandShutdown            CommandType = "shutdown"
	CommandSyncContent         CommandType = "sync_content"
	CommandUpdatePlaylist      CommandType = "update_playlist"
	CommandUpdateConfig        CommandType = "update_config"
	CommandClearCache          CommandType = "clear_cache"
	CommandEmergencyMessage    CommandType = "emergency_message"
	CommandTestDisplay         CommandType = "test_display"
	CommandGetLogs             CommandType = "get_logs"
	CommandHealthCheck         CommandType = "health_check"
	CommandUpdatePowerSchedule CommandType = "update_power_schedule"
)

// commandTypes is the closed validation set for CommandType.
var commandTypes = map[CommandType]struct{}{
	CommandRestart:             {},
	CommandRestartContent:      {},
	CommandReboot:              {},
	CommandShutdown:            {},
	CommandSyncContent:         {},
	CommandUpdatePlaylist:      {},
	CommandUpdateConfig:        {},
	CommandClearCache:          {},
	CommandEmergencyMessage:    {},
	CommandTestDisplay:         {},
	CommandGetLogs:             {},
	CommandHealthCheck:         {},
	CommandUpdatePowerSchedule: {},
}

// Valid reports whether t is a member of the closed command type set.
func (t CommandType) Valid() bool {
	_, ok := commandTypes[t]
	return ok
}

// CommandTypes returns the closed set of valid command types.
// The slice is a copy; callers may not mutate the validation set through it.
func CommandTypes() []CommandType {
	out := make([]CommandType, 0, len(commandTypes))
	for t := range commandTypes {
		out = append(out, t)
	}
	return out
}

// CommandStatus is the lifecycle state of a command.
//
// Transitions are monotonic:
//
//	pending -> acknowledged -> completed | failed | timed_out
//	pending -> completed | failed | timed_out
//
// Terminal states (completed, failed, timed_out) never re-open.
type CommandStatus string

const (
	CommandPending      CommandStatus = "pending"
	CommandAcknowledged CommandStatus = "acknowledged"
	CommandCompleted    CommandStatus = "completed"
	CommandFailed       CommandStatus = "failed"
	CommandTimedOut     CommandStatus = "timed_out"
)

// Terminal reports whether s is one of the final command states.
func (s CommandStatus) Terminal() bool {
	return s == CommandCompleted || s == CommandFailed || s == CommandTimedOut
}

// Command is a unit of imperative work targeted at one device.
//
// Priority is an integer where lower values are more urgent; pending
// commands are handed to devices ordered by (priority ASC, created_at ASC).
// TimeoutSeconds bounds the device's window to report completion: a
// background sweep transitions overdue pending/acknowledged commands to
// timed_out, the only system-initiated transition.
type Command struct {
	ID             string                 `json:"id"`
	DeviceID       string                 `json:"device_id"`
	ScreenID       string                 `json:"screen_id"`
	CommandType    CommandType            `json:"command_type"`
	CommandData    map[string]interface{} `json:"command_data,omitempty"`
	Priority       int                    `json:"priority"`
	Status         CommandStatus          `json:"status"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	Result         map[string]interface{} `json:"result,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
}

// Deadline returns the instant after which the command is eligible for the
// timeout sweep.
func (c *Command) Deadline() time.Time {
	return c.CreatedAt.Add(time.Duration(c.TimeoutSeconds) * time.Second)
}
