// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random secret with byteLength bytes
// of entropy. Used for password reset tokens (32 bytes, well above the
// 24-byte floor the recovery flow requires).
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a raw secret.
//
// # Why not bcrypt here?
//
// The stored hash is looked up by equality, and the secret itself carries
// the entropy — an attacker cannot enumerate 32 random bytes, so a fast
// deterministic digest is sufficient and keeps the lookup indexable.
// Passwords (low-entropy, attacker-guessable) still go through bcrypt.
func HashToken(rawToken string) string {
	digest := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(digest[:])
}
