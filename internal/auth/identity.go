// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
Package auth implements staff identity and access management for Clinicore.

It defines the core domain entities (Identity, ResetToken) and the logic for
authentication, credential issuance, password recovery, and provisioning.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
transport dependencies and encapsulate all business rules related to staff
identity. Every security-relevant transition is mirrored into the audit
trail via [audit.Recorder].
*/
package auth

import (
	"time"

	"github.com/clinicore/clinicore/internal/platform/sec"
)

// # Domain Entities

// Identity represents a staff member able to authenticate against the API.
type Identity struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // Explicitly omitted from JSON for security.
	RoleID       string   `json:"-"`
	Role         sec.Role `json:"role"`

	// MustChangePassword is set by an admin-forced reset and cleared by a
	// successful self-service reset. Login reports it so clients can route
	// the staff member to a password-change screen.
	MustChangePassword bool `json:"must_change_password"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleRecord is a row of the fixed role table.
//
// The capability set attached to each role lives in [sec.Role]; this record
// only exists so identities can reference roles relationally and the admin
// API can enumerate them.
type RoleRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResetToken is a single-use password recovery grant.
//
// Only the SHA-256 hash of the raw secret is ever stored. A token is
// redeemable iff UsedAt is nil and ExpiresAt is in the future; once
// consumed, UsedAt is set and never cleared.
type ResetToken struct {
	ID         string     `json:"id"`
	IdentityID string     `json:"identity_id"`
	TokenHash  string     `json:"-"` // Hash of the raw secret. Omitted for security.
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername           = "username"
	FieldPassword           = "password"
	FieldRoleName           = "role_name"
	FieldToken              = "token"
	FieldNewPassword        = "new_password"
	FieldTemporaryPassword  = "temporary_password"
	FieldAccessToken        = "access_token"
	FieldTokenType          = "token_type"
	FieldExpiresIn          = "expires_in"
	FieldMustChangePassword = "must_change_password"
	FieldMessage            = "message"
)
