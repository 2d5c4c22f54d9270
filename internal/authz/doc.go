// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package authz enforces role-based access control on the admin
// surface using Casbin.
//
// Authentication (internal/auth) establishes who the caller is; this
// package decides what they may touch:
//
//	Request -> auth.RequireAdmin -> authz.AuthorizeRequest -> handler
//
// # Model
//
// The model is compiled in and fixed: subjects, path objects, and
// read/write/delete actions, with role inheritance and keyMatch path
// wildcards. The policy also ships embedded but can be replaced with a
// CSV file via EnforcerConfig.PolicyPath for deployments that define
// their own roles.
//
// # Roles
//
// Three roles cover the admin surface: admin (everything), operator
// (emergency overrides, pairing, channel visibility), and viewer
// (read-only). Tokens without a role claim fall back to the configured
// DefaultRole, viewer by default.
//
// Decisions are cached for a few minutes; role changes through the
// Enforcer invalidate the affected subject's entries.
package authz
