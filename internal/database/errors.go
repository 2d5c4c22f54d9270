// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package database

import "errors"

// Sentinel errors returned by the query surface. Callers test them with
// errors.Is; the API layer maps them to response codes exactly once.
var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("database: row not found")

	// ErrInvalidTransition means a conditional lifecycle update matched the
	// row but not its required current state (for example acknowledging a
	// command that already completed). The row was left untouched.
	ErrInvalidTransition = errors.New("database: invalid status transition")

	// ErrAlreadyClaimed means a pairing code was claimed by an earlier
	// request and cannot be claimed again.
	ErrAlreadyClaimed = errors.New("database: pairing code already claimed")

	// ErrCodeExpired means a pairing code is past its validity window.
	ErrCodeExpired = errors.New("database: pairing code expired")

	// ErrDuplicateCode means a freshly generated pairing code collided with
	// a live one. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("database: pairing code collision")
)
