// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package delivery runs per-screen notification sessions over SSE.
//
// A session moves through Connecting -> CatchingUp -> Streaming -> Closed.
// On connect it registers in the Registry (evicting any previous session
// for the screen), replays undelivered rows oldest-first, emits
// realtime_ready, then consumes its NotificationSource until the client
// goes away. Every push is preceded by the delivered_at claim; a row lost
// to a concurrent poll is skipped, which is what makes double delivery
// impossible rather than merely unlikely.
//
// One goroutine owns each session. All SSE writes happen on that
// goroutine, so the writer needs no locking; eviction and shutdown reach
// a session only through context cancellation. Store errors inside a
// session feed a circuit breaker — three consecutive failures close the
// session so the device reconnects against a healthy instance.
package delivery
