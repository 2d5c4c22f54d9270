// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package notify

import "strings"

// DefaultSubjectPrefix is used when no subject prefix is configured.
const DefaultSubjectPrefix = "callboard"

// SubjectForScreen returns the per-screen wake-up subject, e.g.
// "callboard.notifications.screen-42".
func SubjectForScreen(prefix, screenID string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + ".notifications." + subjectToken(screenID)
}

// subjectToken makes an identifier safe for use as a NATS subject token.
// Spaces, dots, and wildcard characters would change subject semantics,
// so they are replaced with underscores.
func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '.', '*', '>':
			return '_'
		}
		return r
	}, s)
}
