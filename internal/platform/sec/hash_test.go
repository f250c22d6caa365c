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
TestHashPassword_RoundTrip verifies that a hashed password verifies against
the original plaintext and rejects any other input.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("doctor123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, sec.CheckPasswordHash("doctor123", hash))
	assert.False(t, sec.CheckPasswordHash("doctor124", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}

/*
TestHashPassword_Salted verifies that two hashes of the same password differ.
*/
func TestHashPassword_Salted(t *testing.T) {
	first, err := sec.HashPassword("doctor123")
	require.NoError(t, err)

	second, err := sec.HashPassword("doctor123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify despite differing salts.
	assert.True(t, sec.CheckPasswordHash("doctor123", first))
	assert.True(t, sec.CheckPasswordHash("doctor123", second))
}

/*
TestCheckPasswordHash_FailsClosed verifies that malformed stored hashes are
reported as a mismatch, never as success.
*/
func TestCheckPasswordHash_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty_hash", ""},
		{"garbage_hash", "not-a-bcrypt-hash"},
		{"truncated_hash", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, sec.CheckPasswordHash("doctor123", tt.hash))
		})
	}
}
