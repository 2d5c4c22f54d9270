// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package main provides the Callboard HTTP server
//
// Callboard API delivers commands and content notifications to paired
// digital signage devices, with adaptive polling schedules and an
// administrative dashboard surface.
//
// @title Callboard API
// @version 1.0
// @description Command and notification delivery API for digital signage fleets
// @description
// @description ## Features
// @description
// @description - **Device Pairing**: Six-character codes bind player devices to screens
// @description - **Command Lifecycle**: Enqueue, deliver, acknowledge, complete/fail with timeout sweeping
// @description - **Notification Streaming**: Server-sent events with catch-up replay on reconnect
// @description - **Adaptive Polling**: Per-tenant schedules with day/time periods and emergency override
// @description - **Exactly-Once Delivery**: Store-side claims dedup across instances and transports
// @description - **Admin Dashboard**: Live websocket feed of fleet activity
// @description
// @description ## Authentication
// @description
// @description Devices authenticate with the bearer token issued when a pairing code is
// @description claimed. Admin endpoints require an admin JWT (or HTTP Basic in dev
// @description deployments). Pairing endpoints are unauthenticated but rate limited.
// @description
// @description ## Rate Limiting
// @description
// @description Per-IP limits by route group: device 300/min, pairing 30/min,
// @description admin 100/min, stream connects 30/min, health 1000/min.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-25T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/callboardhq/callboard/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8480
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token. Devices receive theirs at pairing; admins use a dashboard JWT.
//
// @tag.name Core
// @tag.description Liveness, readiness, and component status endpoints
//
// @tag.name Pairing
// @tag.description Unauthenticated pairing endpoints used by devices fresh out of the box
//
// @tag.name Devices
// @tag.description Authenticated device endpoints (heartbeats and status reports)
//
// @tag.name Commands
// @tag.description Command lifecycle endpoints: enqueue, poll, acknowledge, complete, fail
//
// @tag.name Notifications
// @tag.description Notification delivery via server-sent events with polling fallback
//
// @tag.name Admin
// @tag.description Administrative operations: polling configuration, emergency override, pairing, publishing
package main
