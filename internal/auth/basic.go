// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthManager validates HTTP Basic credentials for the dev-mode
// admin surface. The password is bcrypt-hashed once at startup so every
// request pays only the compare.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager hashes the configured password (bcrypt cost 12).
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("admin password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &BasicAuthManager{username: username, passwordHash: hash}, nil
}

// ValidateCredentials checks an Authorization header value and returns
// the authenticated username. Comparisons are constant-time.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid credentials format")
	}

	// Both comparisons always run so a wrong username costs the same as
	// a wrong password.
	usernameMatch := subtle.ConstantTimeCompare([]byte(parts[0]), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(parts[1])) == nil
	if !usernameMatch || !passwordMatch {
		return "", fmt.Errorf("invalid username or password")
	}
	return parts[0], nil
}

// ChallengeHeader is the WWW-Authenticate value sent with 401 responses.
func (m *BasicAuthManager) ChallengeHeader() string {
	return `Basic realm="Callboard", charset="UTF-8"`
}
