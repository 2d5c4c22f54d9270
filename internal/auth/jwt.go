// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/callboardhq/callboard/internal/config"
)

// Token use markers. Both token kinds are signed with the same secret;
// the use claim keeps a device token from opening the admin surface and
// vice versa.
const (
	tokenUseDevice = "device"
	tokenUseAdmin  = "admin"
)

// adminTokenTTL bounds admin sessions. Device tokens follow the
// configured DeviceTokenTTL instead (0 disables expiry; devices are
// long-lived and re-pair to rotate).
const adminTokenTTL = 24 * time.Hour

// DeviceClaims is the paired identity carried in a device token. The
// screen id is the canonical address; the device id is the alias
// resolved at pairing time.
type DeviceClaims struct {
	ScreenID string `json:"screen_id"`
	DeviceID string `json:"device_id"`
	Use      string `json:"use"`
	jwt.RegisteredClaims
}

// AdminClaims identifies a dashboard operator and the role the admin
// surface enforces.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Use      string `json:"use"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the HS256 tokens used on both
// surfaces.
type TokenManager struct {
	secret    []byte
	deviceTTL time.Duration
}

// NewTokenManager builds a manager from the security config. The secret
// is stored as []byte and never logged.
func NewTokenManager(cfg *config.SecurityConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &TokenManager{
		secret:    []byte(cfg.JWTSecret),
		deviceTTL: cfg.DeviceTokenTTL,
	}, nil
}

// IssueDeviceToken mints the long-lived token handed out when a pairing
// code is claimed.
func (m *TokenManager) IssueDeviceToken(screenID, deviceID string) (string, error) {
	now := time.Now()
	claims := &DeviceClaims{
		ScreenID: screenID,
		DeviceID: deviceID,
		Use:      tokenUseDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   screenID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.deviceTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.deviceTTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign device token: %w", err)
	}
	return signed, nil
}

// IssueAdminToken mints a dashboard session token.
func (m *TokenManager) IssueAdminToken(username, role string) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Username: username,
		Role:     role,
		Use:      tokenUseAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// ValidateDeviceToken checks signature, liveness window, and that the
// token was minted for the device surface.
func (m *TokenManager) ValidateDeviceToken(tokenString string) (*DeviceClaims, error) {
	claims := &DeviceClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Use != tokenUseDevice || claims.ScreenID == "" {
		return nil, fmt.Errorf("token is not a device token")
	}
	return claims, nil
}

// ValidateAdminToken checks signature, expiry, and the admin use claim.
func (m *TokenManager) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Use != tokenUseAdmin || claims.Username == "" {
		return nil, fmt.Errorf("token is not an admin token")
	}
	return claims, nil
}

// parse verifies structure and signature, pinning HMAC so an attacker
// cannot downgrade the algorithm.
func (m *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token claims")
	}
	return nil
}
