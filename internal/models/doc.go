// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package models defines the data structures shared across the delivery
subsystem.

Key components:

  - Command: imperative work targeted at one device, with the monotonic
    pending -> acknowledged -> completed | failed | timed_out lifecycle
  - Notification: durable "content changed" fact with the delivered-at
    claim invariant (set at most once, by exactly one delivery path)
  - PollingConfiguration: per-tenant time-of-day cadence schedule with the
    lazily-expiring emergency override
  - Screen / Device / DevicePairing: minimal consumed shapes for addressing
    and the pairing handshake
  - APIResponse / APIError: standardized HTTP envelope

Types here carry no behavior beyond small derived accessors. All state
transitions are owned by the dispatch, delivery, and polling packages and
are enforced as conditional updates in the store, never in memory.

Thread safety: models are plain data, safe for concurrent reads; nothing
here holds a mutex.
*/
package models
