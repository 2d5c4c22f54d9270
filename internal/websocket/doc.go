// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package websocket fans delivery-subsystem events out to admin dashboard
clients over gorilla/websocket.

The Hub is the in-process sink for lifecycle events: command status
changes, published notifications, screens opening and closing their
delivery channels, and emergency override flips. Handlers and services
hand events to the hub; the hub broadcasts them to every connected
dashboard in a deterministic order.

Key components:

  - Hub: central broker; implements the event sink seams of the
    dispatch, notify, and delivery packages
  - Client: one dashboard connection with read/write pump goroutines
  - Message: the {type, data} envelope on the wire

Message types:

  - screen_connected / screen_disconnected: a screen's delivery channel
    opened or closed
  - command_status: a command changed lifecycle state (full row)
  - notification_published: a notification was accepted (full row)
  - emergency_override: the polling emergency state flipped
  - ping / pong: client keepalive on top of protocol-level pings

Delivery here is advisory and lossy: a slow dashboard with a full send
buffer is dropped, and a full broadcast queue drops the event. Nothing
a dashboard needs for correctness travels only over this channel; the
REST surface is the source of truth on reconnect.

Connection lifecycle:

 1. Client connects via HTTP upgrade on the admin surface
 2. Hub registers the client
 3. Read/write pumps start; protocol pings every 54s, 60s pong window
 4. Hub broadcasts messages, dropping clients that cannot keep up
 5. On disconnect the hub unregisters and the pumps exit

The hub runs as a supervised service: Serve blocks until the context
ends, then closes every client and returns the context error.
*/
package websocket
