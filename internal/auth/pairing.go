// Callboard - Device Command and Notification Delivery for Digital Signage
// Copyright 2026 Callboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/callboardhq/callboard

package auth

import (
	"crypto/rand"
	"fmt"

	"github.com/callboardhq/callboard/internal/models"
)

// pairingAlphabet is the character set shown on device screens. Upper
// case and digits only so the code survives being read aloud.
const pairingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePairingCode returns a fresh short code for the pairing flow.
// Rejection sampling keeps the draw uniform over the alphabet.
func GeneratePairingCode() (string, error) {
	// Largest multiple of len(alphabet) that fits in a byte.
	max := byte(256 - (256 % len(pairingAlphabet)))

	out := make([]byte, 0, models.PairingCodeLength)
	buf := make([]byte, models.PairingCodeLength*2)
	for len(out) < models.PairingCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate pairing code: %w", err)
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out = append(out, pairingAlphabet[int(b)%len(pairingAlphabet)])
			if len(out) == models.PairingCodeLength {
				break
			}
		}
	}
	return string(out), nil
}
