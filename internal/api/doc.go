// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package api provides the HTTP layer of the delivery subsystem.

Every route lives under /api/v1 and answers with the standard envelope
(models.APIResponse). Service errors are mapped to envelope codes exactly
once, at this boundary, by respondDomainError; the owning packages return
wrapped sentinel errors and never write HTTP themselves.

Key Components:

  - Handler: request handlers over the dispatcher, publisher, polling
    scheduler, delivery registry, and store
  - Router: chi route tree with per-group middleware stacks
  - ChiMiddleware: CORS, per-endpoint rate limits, security headers,
    request-ID injection

Route Groups:

 1. Device surface (/api/v1/) — bearer device token:
    command fetch and lifecycle reports, the SSE notification stream,
    the notification poll, and heartbeat ingest.

 2. Pairing surface (/api/v1/devices/) — unauthenticated, per-IP
    attempt-limited: pairing-code issue and claim polling.

 3. Admin surface (/api/v1/admin/) — admin JWT (or Basic in dev),
    role-checked by the authz middleware: polling schedules, the
    emergency override, screen pairing, live channel inspection, and
    the dashboard websocket.

 4. Operational surface — /api/v1/health, /metrics (Prometheus),
    /swagger/* (generated OpenAPI UI).

Handlers validate with go-playground/validator, decode and encode with
goccy/go-json, and treat the request context as the lifetime of all
downstream work. The SSE stream handler is the one place a handler
outlives its request goroutine budget: it hands the connection to a
delivery.Session and blocks until the session closes.
*/
package api
