// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/callboardhq/callboard/internal/models"
)

const commandColumns = `id, device_id, screen_id, command_type, command_data,
	priority, status, timeout_seconds, COALESCE(created_by, ''), created_at,
	acknowledged_at, completed_at, result, COALESCE(error_message, '')`

const (
	insertCommandSQL = `INSERT INTO commands
		(id, device_id, screen_id, command_type, command_data, priority,
		 status, timeout_seconds, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getCommandSQL = `SELECT ` + commandColumns + ` FROM commands WHERE id = $1`

	// Delivery order is part of the contract: more urgent first, FIFO within
	// a priority band.
	listPendingCommandsSQL = `SELECT ` + commandColumns + ` FROM commands
		WHERE device_id = $1 AND status = 'pending'
		ORDER BY priority ASC, created_at ASC
		LIMIT $2`

	getCommandStatusSQL = `SELECT status FROM commands WHERE id = $1`

	ackCommandSQL = `UPDATE commands
		SET status = 'acknowledged', acknowledged_at = $2
		WHERE id = $1 AND status = 'pending'`

	completeCommandSQL = `UPDATE commands
		SET status = 'completed', completed_at = $2, result = $3
		WHERE id = $1 AND status IN ('pending', 'acknowledged')`

	failCommandSQL = `UPDATE commands
		SET status = 'failed', completed_at = $2, error_message = $3
		WHERE id = $1 AND status IN ('pending', 'acknowledged')`

	sweepCommandsSQL = `UPDATE commands
		SET status = 'timed_out', completed_at = $1
		WHERE status IN ('pending', 'acknowledged')
		  AND created_at + timeout_seconds * interval '1 second' < $1`
)

// InsertCommand stores a freshly enqueued command. The caller has already
// assigned the id, status, and created_at.
func (s *Store) InsertCommand(ctx context.Context, cmd *models.Command) (err error) {
	defer func(start time.Time) { observe("insert", "commands", start, err) }(time.Now())

	data, err := jsonOrNil(cmd.CommandData)
	if err != nil {
		return fmt.Errorf("encode command_data: %w", err)
	}

	_, err = s.pool.Exec(ctx, insertCommandSQL,
		cmd.ID, cmd.DeviceID, cmd.ScreenID, string(cmd.CommandType), data,
		cmd.Priority, string(cmd.Status), cmd.TimeoutSeconds,
		textOrNil(cmd.CreatedBy), cmd.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	return nil
}

// GetCommand fetches one command by id, or ErrNotFound.
func (s *Store) GetCommand(ctx context.Context, id string) (cmd *models.Command, err error) {
	defer func(start time.Time) { observe("get", "commands", start, err) }(time.Now())

	cmd, err = scanCommand(s.pool.QueryRow(ctx, getCommandSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get command: %w", err)
	}
	return cmd, nil
}

// ListPendingCommands returns the device's pending commands in delivery
// order (priority ASC, created_at ASC), capped at limit.
func (s *Store) ListPendingCommands(ctx context.Context, deviceID string, limit int) (cmds []models.Command, err error) {
	defer func(start time.Time) { observe("list_pending", "commands", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, listPendingCommandsSQL, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending commands: %w", err)
	}
	defer rows.Close()

	cmds = make([]models.Command, 0, 8)
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending command: %w", err)
		}
		cmds = append(cmds, *cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending commands: %w", err)
	}
	return cmds, nil
}

// AcknowledgeCommand transitions pending -> acknowledged. A missing row is
// ErrNotFound; a row in any other state is ErrInvalidTransition.
func (s *Store) AcknowledgeCommand(ctx context.Context, id string, now time.Time) (err error) {
	defer func(start time.Time) { observe("acknowledge", "commands", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, ackCommandSQL, id, now)
	if err != nil {
		return fmt.Errorf("acknowledge command: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.explainMissedTransition(ctx, id, nil)
}

// CompleteCommand transitions pending|acknowledged -> completed with the
// device-reported result. Re-completing a completed command is a no-op
// success; any other terminal state is ErrInvalidTransition.
func (s *Store) CompleteCommand(ctx context.Context, id string, result map[string]interface{}, now time.Time) (err error) {
	defer func(start time.Time) { observe("complete", "commands", start, err) }(time.Now())

	data, err := jsonOrNil(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	tag, err := s.pool.Exec(ctx, completeCommandSQL, id, now, data)
	if err != nil {
		return fmt.Errorf("complete command: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.explainMissedTransition(ctx, id, []models.CommandStatus{models.CommandCompleted})
}

// FailCommand transitions pending|acknowledged -> failed with the
// device-reported reason. Re-failing a failed command is a no-op success.
func (s *Store) FailCommand(ctx context.Context, id, errorMessage string, now time.Time) (err error) {
	defer func(start time.Time) { observe("fail", "commands", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, failCommandSQL, id, now, textOrNil(errorMessage))
	if err != nil {
		return fmt.Errorf("fail command: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return s.explainMissedTransition(ctx, id, []models.CommandStatus{models.CommandFailed})
}

// SweepTimedOut bulk-transitions every overdue pending or acknowledged
// command to timed_out and returns how many rows moved. The WHERE clause is
// the entire coordination story: concurrent sweeps from multiple instances
// each claim a disjoint subset, and a re-run over the same set returns 0.
func (s *Store) SweepTimedOut(ctx context.Context, now time.Time) (n int64, err error) {
	defer func(start time.Time) { observe("sweep", "commands", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, sweepCommandsSQL, now)
	if err != nil {
		return 0, fmt.Errorf("sweep timed out commands: %w", err)
	}
	return tag.RowsAffected(), nil
}

// explainMissedTransition reads back a command whose conditional update
// matched zero rows and decides between ErrNotFound, idempotent success
// (current status in okStates), and ErrInvalidTransition.
func (s *Store) explainMissedTransition(ctx context.Context, id string, okStates []models.CommandStatus) error {
	var status string
	err := s.pool.QueryRow(ctx, getCommandStatusSQL, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read back command status: %w", err)
	}
	for _, ok := range okStates {
		if models.CommandStatus(status) == ok {
			return nil
		}
	}
	return fmt.Errorf("%w: command %s is %s", ErrInvalidTransition, id, status)
}

// scanCommand reads one commands row. Works for both QueryRow and Rows.
func scanCommand(row pgx.Row) (*models.Command, error) {
	var (
		c         models.Command
		cmdType   string
		status    string
		dataRaw   []byte
		resultRaw []byte
	)
	err := row.Scan(&c.ID, &c.DeviceID, &c.ScreenID, &cmdType, &dataRaw,
		&c.Priority, &status, &c.TimeoutSeconds, &c.CreatedBy, &c.CreatedAt,
		&c.AcknowledgedAt, &c.CompletedAt, &resultRaw, &c.ErrorMessage)
	if err != nil {
		return nil, err
	}

	c.CommandType = models.CommandType(cmdType)
	c.Status = models.CommandStatus(status)

	if len(dataRaw) > 0 {
		if err := json.Unmarshal(dataRaw, &c.CommandData); err != nil {
			return nil, fmt.Errorf("decode command_data: %w", err)
		}
	}
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &c.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return &c, nil
}

// jsonOrNil encodes m for a JSONB column, mapping an absent value to SQL
// NULL instead of the JSON literal "null".
func jsonOrNil(m map[string]interface{}) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// textOrNil maps an empty string to SQL NULL for nullable TEXT columns.
func textOrNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
