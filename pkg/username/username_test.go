// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicore/clinicore/pkg/username"
)

/*
TestNormalize verifies trimming and NFC composition of submitted usernames.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims_whitespace", "  dr_smith  ", "dr_smith"},
		{"keeps_case", "Dr_Smith", "Dr_Smith"},
		{"composes_nfc", "nurse_amélie", "nurse_amélie"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, username.Normalize(tt.in))
		})
	}
}

/*
TestFold verifies the case-insensitive comparison form.
*/
func TestFold(t *testing.T) {
	assert.Equal(t, username.Fold("DR_SMITH"), username.Fold("dr_smith"))
	assert.Equal(t, username.Fold(" Admin_User"), username.Fold("admin_user "))
	assert.NotEqual(t, username.Fold("dr_smith"), username.Fold("dr_smyth"))
}

/*
TestEqual verifies the account-identity equivalence helper.
*/
func TestEqual(t *testing.T) {
	assert.True(t, username.Equal("Dr_Smith", "dr_smith"))
	assert.True(t, username.Equal("  admin_user", "ADMIN_USER  "))
	assert.False(t, username.Equal("nurse_a", "nurse_b"))
}
