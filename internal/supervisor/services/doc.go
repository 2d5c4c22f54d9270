// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package services provides suture.Service wrappers for Callboard components.

This package adapts components whose lifecycles don't already fit the
suture v4 supervision model, translating their patterns into suture's
context-aware Serve:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining streams and websockets

Embedded Feed (FeedServerService):
  - Supervises the embedded NATS server backing the wake-up feed
  - Health-probes the server and fails the service if it dies
  - Shuts the server down on context cancellation

Components that already block on a context, like websocket.Hub and
dispatch.Sweeper, implement suture.Service themselves and are added to
the tree directly.
*/
package services
