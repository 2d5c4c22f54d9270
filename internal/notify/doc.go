// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package notify publishes content-change notifications and feeds them to
// live delivery sessions.
//
// The store is the durability layer: Publish inserts an undelivered row
// first and only then announces it on the NATS wake-up feed. The feed is
// core NATS (no JetStream) because a lost signal costs nothing — session
// catch-up and the polling endpoint read undelivered rows straight from
// the store.
//
// Sessions consume notifications through the NotificationSource contract.
// Two sources implement it with identical semantics: FeedSource (NATS
// push) and PollSource (short store poll loop for deployments without a
// broker). Either way the delivery session, not the source, performs the
// delivered_at claim.
package notify
