// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

// Package testinfra provides container infrastructure for integration
// tests, built on testcontainers-go.
//
// The store tests run against a real PostgreSQL instance rather than a
// mock so the conditional updates the subsystem depends on (delivered
// claims, status transitions, the timeout sweep) are validated against
// actual database semantics:
//
//	func TestStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//	    // connect with pg.URL, run migrations, exercise queries
//	}
//
// Everything here is behind the integration build tag. Tests skip
// gracefully when Docker is unavailable; the first run downloads the
// container image, later runs use the cache.
package testinfra
