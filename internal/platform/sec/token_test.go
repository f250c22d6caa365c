// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies entropy length and per-call uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	// base64url of 32 bytes without padding is 43 characters.
	assert.Len(t, first, 43)
}

/*
TestHashToken verifies the digest is deterministic and input-sensitive.
*/
func TestHashToken(t *testing.T) {
	hash := sec.HashToken("raw-secret")

	assert.Equal(t, hash, sec.HashToken("raw-secret"))
	assert.NotEqual(t, hash, sec.HashToken("raw-secret2"))
	assert.NotContains(t, hash, "raw-secret")

	// hex-encoded SHA-256 is always 64 characters.
	assert.Len(t, hash, 64)
}
