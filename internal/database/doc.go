// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package database is the PostgreSQL persistence layer for the delivery
// subsystem. It owns the pool, the idempotent startup migrations, and the
// query surface for commands, notifications, polling configurations,
// screens, devices, and pairing codes.
//
// Every state transition the subsystem performs is a conditional update:
// acknowledging a command requires status = pending, marking a
// notification delivered requires delivered_at IS NULL, the timeout sweep
// only touches overdue non-terminal rows. Callers never issue
// unconditional writes to lifecycle columns, which is what makes
// concurrent instances (and the concurrent stream/poll paths inside one
// instance) safe without coordination beyond the database itself.
//
// Row-not-found and lost-race outcomes surface as the package sentinel
// errors ErrNotFound and ErrInvalidTransition so callers can map them to
// API error codes without string matching.
package database
