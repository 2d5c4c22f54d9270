// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package dispatch owns the command lifecycle: enqueueing work for
// devices, handing it out in priority order, applying the device-reported
// transitions, and timing out commands whose window lapsed.
//
// The dispatcher never retries a command server-side. A restart or reboot
// that executed but failed to report must not run twice, so recovery is
// always a human (or the surrounding CMS) enqueueing a fresh command.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/callboardhq/callboard/internal/database"
	"github.com/callboardhq/callboard/internal/logging"
	"github.com/callboardhq/callboard/internal/metrics"
	"github.com/callboardhq/callboard/internal/models"
)

// ErrInvalidCommandType marks an enqueue with a type outside the closed
// set. The API layer maps it to a validation error.
var ErrInvalidCommandType = errors.New("dispatch: invalid command type")

// Store is the persistence surface the dispatcher needs.
type Store interface {
	InsertCommand(ctx context.Context, cmd *models.Command) error
	GetCommand(ctx context.Context, id string) (*models.Command, error)
	ListPendingCommands(ctx context.Context, deviceID string, limit int) ([]models.Command, error)
	AcknowledgeCommand(ctx context.Context, id string, now time.Time) error
	CompleteCommand(ctx context.Context, id string, result map[string]interface{}, now time.Time) error
	FailCommand(ctx context.Context, id, errorMessage string, now time.Time) error
	SweepTimedOut(ctx context.Context, now time.Time) (int64, error)
}

// EventSink receives command lifecycle events for the admin dashboard
// feed. Implementations must not block.
type EventSink interface {
	CommandStatus(cmd *models.Command)
}

// noopSink is used when no dashboard feed is wired.
type noopSink struct{}

func (noopSink) CommandStatus(*models.Command) {}

// EnqueueRequest carries the caller-supplied fields of a new command.
type EnqueueRequest struct {
	DeviceID       string
	ScreenID       string
	CommandType    models.CommandType
	CommandData    map[string]interface{}
	Priority       int
	TimeoutSeconds int
	CreatedBy      string
}

// Dispatcher is the command lifecycle service.
type Dispatcher struct {
	store          Store
	events         EventSink
	defaultTimeout int
	listLimit      int
	now            func() time.Time
}

// NewDispatcher creates a dispatcher. defaultTimeoutSeconds is applied to
// enqueues that omit a timeout; listLimit caps ListPending batches.
func NewDispatcher(store Store, defaultTimeoutSeconds, listLimit int) *Dispatcher {
	return &Dispatcher{
		store:          store,
		events:         noopSink{},
		defaultTimeout: defaultTimeoutSeconds,
		listLimit:      listLimit,
		now:            time.Now,
	}
}

// SetEventSink wires the admin dashboard feed. Call before serving.
func (d *Dispatcher) SetEventSink(sink EventSink) {
	if sink != nil {
		d.events = sink
	}
}

// Enqueue validates and durably stores a new pending command.
func (d *Dispatcher) Enqueue(ctx context.Context, req EnqueueRequest) (*models.Command, error) {
	if !req.CommandType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommandType, req.CommandType)
	}

	timeout := req.TimeoutSeconds
	if timeout == 0 {
		timeout = d.defaultTimeout
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout_seconds must be positive", ErrInvalidCommandType)
	}

	cmd := &models.Command{
		ID:             uuid.NewString(),
		DeviceID:       req.DeviceID,
		ScreenID:       req.ScreenID,
		CommandType:    req.CommandType,
		CommandData:    req.CommandData,
		Priority:       req.Priority,
		Status:         models.CommandPending,
		TimeoutSeconds: timeout,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      d.now().UTC(),
	}

	if err := d.store.InsertCommand(ctx, cmd); err != nil {
		return nil, fmt.Errorf("enqueue command: %w", err)
	}

	metrics.RecordCommandEnqueued(string(cmd.CommandType))
	logging.Info().
		Str("command_id", cmd.ID).
		Str("device_id", cmd.DeviceID).
		Str("screen_id", cmd.ScreenID).
		Str("command_type", string(cmd.CommandType)).
		Int("priority", cmd.Priority).
		Msg("Command enqueued")

	d.events.CommandStatus(cmd)
	return cmd, nil
}

// ListPending returns the device's pending commands in delivery order:
// priority ascending (lower is more urgent), oldest first within a band.
func (d *Dispatcher) ListPending(ctx context.Context, deviceID string) ([]models.Command, error) {
	cmds, err := d.store.ListPendingCommands(ctx, deviceID, d.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list pending commands: %w", err)
	}
	return cmds, nil
}

// Get returns one command by id. The API layer uses it to verify
// ownership before a device reports a transition.
func (d *Dispatcher) Get(ctx context.Context, id string) (*models.Command, error) {
	cmd, err := d.store.GetCommand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get command: %w", err)
	}
	return cmd, nil
}

// Acknowledge applies the device's pending -> acknowledged transition.
func (d *Dispatcher) Acknowledge(ctx context.Context, id string) error {
	now := d.now().UTC()
	if err := d.store.AcknowledgeCommand(ctx, id, now); err != nil {
		return d.transitionErr(id, models.CommandAcknowledged, err)
	}

	metrics.RecordCommandTransition(string(models.CommandAcknowledged))
	d.emitStatus(ctx, id, func(cmd *models.Command) {
		metrics.RecordCommandAcknowledged(cmd.CreatedAt)
	})
	return nil
}

// Complete applies pending|acknowledged -> completed with the device's
// result payload. Re-completing a completed command is a no-op success.
func (d *Dispatcher) Complete(ctx context.Context, id string, result map[string]interface{}) error {
	now := d.now().UTC()
	if err := d.store.CompleteCommand(ctx, id, result, now); err != nil {
		return d.transitionErr(id, models.CommandCompleted, err)
	}

	metrics.RecordCommandTransition(string(models.CommandCompleted))
	d.emitStatus(ctx, id, nil)
	return nil
}

// Fail applies pending|acknowledged -> failed with the device's reason.
// Re-failing a failed command is a no-op success.
func (d *Dispatcher) Fail(ctx context.Context, id, reason string) error {
	now := d.now().UTC()
	if err := d.store.FailCommand(ctx, id, reason, now); err != nil {
		return d.transitionErr(id, models.CommandFailed, err)
	}

	metrics.RecordCommandTransition(string(models.CommandFailed))
	logging.Warn().
		Str("command_id", id).
		Str("reason", reason).
		Msg("Command failed by device")
	d.emitStatus(ctx, id, nil)
	return nil
}

// SweepTimeouts transitions every overdue command to timed_out and
// returns the count. Safe to run concurrently across instances; a re-run
// over the same set moves nothing.
func (d *Dispatcher) SweepTimeouts(ctx context.Context) (int64, error) {
	start := d.now()
	n, err := d.store.SweepTimedOut(ctx, start.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep timeouts: %w", err)
	}

	metrics.RecordSweep(time.Since(start), n)
	if n > 0 {
		logging.Info().Int64("timed_out", n).Msg("Timeout sweep moved commands")
	}
	return n, nil
}

// transitionErr records metrics for rejected transitions and annotates
// the sentinel so handlers log the offending command once.
func (d *Dispatcher) transitionErr(id string, to models.CommandStatus, err error) error {
	if errors.Is(err, database.ErrInvalidTransition) {
		metrics.RecordCommandInvalidTransition(string(to))
		logging.Warn().
			Str("command_id", id).
			Str("requested_status", string(to)).
			Err(err).
			Msg("Rejected command transition")
	}
	return err
}

// emitStatus fetches the post-transition row for the dashboard feed and
// optional metrics hook. Best effort: the transition already committed,
// so a read failure here only costs the event.
func (d *Dispatcher) emitStatus(ctx context.Context, id string, fn func(*models.Command)) {
	cmd, err := d.store.GetCommand(ctx, id)
	if err != nil {
		logging.Debug().Err(err).Str("command_id", id).Msg("Skipping command status event")
		return
	}
	if fn != nil {
		fn(cmd)
	}
	d.events.CommandStatus(cmd)
}
