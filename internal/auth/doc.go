// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

/*
Package auth provides authentication and abuse protection for the
device and admin HTTP surfaces.

This package implements JWT-based device and admin authentication,
HTTP Basic Authentication, pairing-code generation, and per-IP attempt
limiting. It sits between incoming HTTP requests and the API handlers.

Key Components:

  - TokenManager: device and admin token issuance and validation (HMAC-SHA256)
  - BasicAuthManager: HTTP Basic Authentication with bcrypt password hashing
  - Middleware: RequireDevice and RequireAdmin route guards
  - AttemptLimiter: per-IP token bucket guarding the pairing endpoints
  - GeneratePairingCode: crypto/rand six-character pairing codes

Token Separation:

Device and admin tokens are signed with the same secret but carry a
"use" claim ("device" or "admin"). Validation rejects a token presented
to the wrong surface, so a leaked device token can never reach admin
endpoints and vice versa. Device tokens additionally bind a screen_id;
RequireDevice cross-checks it against the X-Screen-ID request header.

Authentication Modes:

The middleware supports three modes (configured via AUTH_MODE):

 1. "jwt" (default): bearer tokens on both surfaces. Device tokens are
    minted during pairing, admin tokens via the admin login flow.
 2. "basic": admin endpoints use HTTP Basic Auth with bcrypt-hashed
    credentials; device endpoints still require device tokens.
 3. "none": all guards pass through. Development only.

Usage Example:

	import (
	    "github.com/callboardhq/callboard/internal/auth"
	    "github.com/callboardhq/callboard/internal/config"
	)

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
	    log.Fatal(err)
	}

	mw := auth.NewMiddleware(tokens, nil, auth.ModeJWT)
	r.Route("/api/v1", func(r chi.Router) {
	    r.With(mw.RequireDevice).Get("/notifications/stream", streamHandler)
	    r.With(mw.RequireAdmin).Post("/admin/emergency-override", overrideHandler)
	})

Pairing Protection:

Pairing codes are six characters from a 36-symbol alphabet, so the code
space is small by design (codes are typed on a TV screen). The
check-pairing endpoint is therefore guarded by AttemptLimiter, a per-IP
token bucket with hourly stale-entry cleanup. ClientIP honors
X-Forwarded-For and X-Real-IP only when the direct peer is a configured
trusted proxy.

Thread Safety:

All components are safe for concurrent use. TokenManager and
BasicAuthManager are read-only after construction; AttemptLimiter
serializes map access with a mutex.
*/
package auth
