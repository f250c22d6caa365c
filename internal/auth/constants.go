// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package auth

// # Authentication Constraints

const (
	// ResetTokenLength is the byte length of the random password reset secret.
	ResetTokenLength = 32

	// MinPasswordLength is the minimum accepted password length, enforced on
	// every path that sets a password (provisioning, self reset, admin reset).
	MinPasswordLength = 8

	// MaxUsernameLength caps username input at the provisioning boundary.
	MaxUsernameLength = 64
)
