// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/platform/apperr"
	"github.com/clinicore/clinicore/internal/platform/sec"
	"github.com/clinicore/clinicore/pkg/username"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing bearer credentials.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	//
	// # Parameters
	//   - identityID: The ID of the staff identity.
	//   - userName: The username of the staff identity.
	//   - role: The role name carried as the 'rol' claim.
	//
	// # Returns
	//   - A signed JWT string, or an error if signing fails.
	GenerateAccessToken(identityID, userName, role string) (string, error)

	// TTL returns the fixed, non-renewable token lifetime.
	TTL() time.Duration
}

// LoginMeter counts authentication outcomes for the metrics registry.
type LoginMeter interface {
	LoginSucceeded()
	LoginFailed()
}

// Service implements staff authentication and recovery use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, credential
// issuance, or reset logic must be reviewed by the security team.
type Service struct {
	identities  IdentityRepository
	roles       RoleRepository
	resetTokens ResetTokenRepository

	tokenProvider TokenProvider
	recorder      *audit.Recorder
	meter         LoginMeter
	logger        *slog.Logger

	// resetTokenTTL is injected, not ambient; see config.ResetTokenTTL.
	resetTokenTTL time.Duration
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	identityRepo IdentityRepository,
	roleRepo RoleRepository,
	resetTokenRepo ResetTokenRepository,
	tokenProv TokenProvider,
	recorder *audit.Recorder,
	meter LoginMeter,
	logger *slog.Logger,
	resetTokenTTL time.Duration,
) *Service {
	return &Service{
		identities:    identityRepo,
		roles:         roleRepo,
		resetTokens:   resetTokenRepo,
		tokenProvider: tokenProv,
		recorder:      recorder,
		meter:         meter,
		logger:        logger,
		resetTokenTTL: resetTokenTTL,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
	Origin   string // Client IP, recorded in the audit trail.
}

// Credential represents a successfully issued bearer credential.
type Credential struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int64  `json:"expires_in"`
	MustChangePassword bool   `json:"must_change_password"`
}

/*
Login validates staff credentials and issues a bearer credential.

Description: Resolves the username case-insensitively, performs a
constant-time password comparison, and mints a fixed-lifetime JWT. Both
failure paths (unknown username, wrong password) produce the identical
generic error and the identical audit action, so responses never reveal
which usernames exist — the distinction lives only server-side.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Credential: Transport-ready bearer credential
  - error: InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Credential, error) {
	uname := username.Normalize(input.Username)

	// ── 1. Identity Resolution ────────────────────────────────────────────
	identity, err := service.identities.FindByUsername(context, uname)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, service.failLogin(context, uname, input.Origin)
		}
		return nil, err
	}

	// ── 2. Password Verification ──────────────────────────────────────────
	if !sec.CheckPasswordHash(input.Password, identity.PasswordHash) {
		return nil, service.failLogin(context, uname, input.Origin)
	}

	// ── 3. Credential Issuance ────────────────────────────────────────────
	accessToken, err := service.tokenProvider.GenerateAccessToken(identity.ID, identity.Username, string(identity.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// ── 4. Bookkeeping ────────────────────────────────────────────────────
	service.recorder.Record(context, audit.ActorRef(identity.ID), audit.ActionLoginSuccess, nil, input.Origin)
	service.meter.LoginSucceeded()

	return &Credential{
		AccessToken:        accessToken,
		TokenType:          "bearer",
		ExpiresIn:          int64(service.tokenProvider.TTL() / time.Second),
		MustChangePassword: identity.MustChangePassword,
	}, nil
}

// failLogin records the failed attempt and returns the generic credential error.
// The attempted username goes into the action text; the actor stays nil since
// no identity was proven.
func (service *Service) failLogin(context context.Context, uname, origin string) error {
	service.recorder.Record(context, nil, audit.ActionLoginFailed(uname), nil, origin)
	service.meter.LoginFailed()
	return apperr.InvalidCredentials()
}

// # Password Recovery Flow

/*
RequestPasswordReset issues a single-use recovery token if the account exists.

Description: The caller always receives the same neutral acknowledgment;
an unknown username is indistinguishable from a known one. For a known
account the raw secret is written to the server log for out-of-band
delivery (the delivery channel itself is outside this service).

Parameters:
  - context: context.Context
  - submittedUsername: string
  - origin: string (Client IP)

Returns:
  - error: Internal failures only; an unknown username is not an error
*/
func (service *Service) RequestPasswordReset(context context.Context, submittedUsername, origin string) error {
	uname := username.Normalize(submittedUsername)

	identity, err := service.identities.FindByUsername(context, uname)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			// Neutral outcome. No audit event either: the trail records
			// issued tokens, not probing of the forgot-password form.
			return nil
		}
		return err
	}

	// ── 1. Secret Generation ──────────────────────────────────────────────
	rawSecret, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_reset_secret_failed: %w", err)
	}

	// ── 2. Hashed Persistence ─────────────────────────────────────────────
	token := &ResetToken{
		IdentityID: identity.ID,
		TokenHash:  sec.HashToken(rawSecret),
		ExpiresAt:  time.Now().Add(service.resetTokenTTL),
	}
	if err := service.resetTokens.Create(context, token); err != nil {
		return fmt.Errorf("auth_service_reset_token_store_failed: %w", err)
	}

	// ── 3. Bookkeeping ────────────────────────────────────────────────────
	service.recorder.Record(context, audit.ActorRef(identity.ID), audit.ActionPasswordResetRequested, nil, origin)

	// The raw secret exists only here and in the recipient's hands.
	service.logger.InfoContext(context, "password_reset_token_issued",
		slog.String("identity_id", identity.ID),
		slog.String("reset_token", rawSecret),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return nil
}

/*
ResetPassword redeems a recovery token and installs a new password.

Description: Redemption is a storage-level atomic transition; of two
concurrent attempts with the same raw secret exactly one succeeds. Success
also clears the forced-change flag. Unknown, expired, and already-consumed
secrets all collapse into the same generic failure.

Parameters:
  - context: context.Context
  - rawSecret: string (The secret from the recovery channel)
  - newPassword: string (Already length-validated at the boundary)
  - origin: string (Client IP)

Returns:
  - error: InvalidOrExpiredToken or internal failures
*/
func (service *Service) ResetPassword(context context.Context, rawSecret, newPassword, origin string) error {

	// ── 1. Atomic Redemption ──────────────────────────────────────────────
	identityID, err := service.resetTokens.Consume(context, sec.HashToken(rawSecret), time.Now())
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.InvalidOrExpiredToken()
		}
		return err
	}

	// ── 2. Password Installation ──────────────────────────────────────────
	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Self-service reset clears the forced-change flag in the same statement.
	if err := service.identities.UpdatePassword(context, identityID, newHash, false); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	// ── 3. Bookkeeping ────────────────────────────────────────────────────
	service.recorder.Record(context, audit.ActorRef(identityID), audit.ActionPasswordResetCompleted, nil, origin)

	return nil
}

/*
AdminResetPassword installs a temporary password on another staff account.

Description: Sets the caller-supplied temporary password and flags the
account for a forced change at next login. The audit event names the
affected username in the action and records the acting administrator as
the actor, so every administrative reset is attributable.

Parameters:
  - context: context.Context
  - adminID: string (Acting administrator, from verified claims)
  - targetUsername: string
  - temporaryPassword: string (Already length-validated at the boundary)
  - origin: string (Client IP)

Returns:
  - error: NotFound (unknown account) or internal failures
*/
func (service *Service) AdminResetPassword(context context.Context, adminID, targetUsername, temporaryPassword, origin string) error {
	uname := username.Normalize(targetUsername)

	identity, err := service.identities.FindByUsername(context, uname)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.NotFound("User")
		}
		return err
	}

	newHash, err := sec.HashPassword(temporaryPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Temporary password forces a change at the next login.
	if err := service.identities.UpdatePassword(context, identity.ID, newHash, true); err != nil {
		return fmt.Errorf("auth_service_admin_reset_update_failed: %w", err)
	}

	service.recorder.Record(context, audit.ActorRef(adminID), audit.ActionPasswordAdminReset(identity.Username), nil, origin)

	return nil
}

// # Provisioning Flow

// RegisterInput holds the data required to provision a new staff account.
type RegisterInput struct {
	Username string
	Password string
	RoleName string
}

/*
RegisterIdentity validates, hashes, and persists a new staff account.

Description: Resolves the role against the fixed role table, rejects
duplicate usernames case-insensitively, and inserts the account as a single
row so the forced-change flag is initialized atomically with the identity.
The check-then-insert race on the username is accepted; the storage
uniqueness index catches it and it surfaces as the same DUPLICATE_USERNAME.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Identity: Created entity
  - error: UnknownRole, DuplicateUsername, or storage errors
*/
func (service *Service) RegisterIdentity(context context.Context, input RegisterInput) (*Identity, error) {
	uname := username.Normalize(input.Username)

	// ── 1. Role Resolution ────────────────────────────────────────────────
	role, err := service.roles.FindByName(context, input.RoleName)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, apperr.UnknownRole(input.RoleName)
		}
		return nil, err
	}

	// ── 2. Uniqueness Pre-Check ───────────────────────────────────────────
	if _, err := service.identities.FindByUsername(context, uname); err == nil {
		return nil, apperr.DuplicateUsername()
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	// ── 3. Hashing & Persistence ──────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	identity := &Identity{
		Username:           uname,
		PasswordHash:       hashedPassword,
		RoleID:             role.ID,
		Role:               sec.Role(role.Name),
		MustChangePassword: false,
	}

	if err := service.identities.Create(context, identity); err != nil {
		return nil, err
	}

	return identity, nil
}

// ListRoles returns the fixed role set for the provisioning UI.
func (service *Service) ListRoles(context context.Context) ([]RoleRecord, error) {
	return service.roles.List(context)
}

// ListIdentities returns a page of staff accounts ordered by username,
// together with the total count for pagination metadata.
func (service *Service) ListIdentities(context context.Context, limit, offset int) ([]Identity, int, error) {
	identities, err := service.identities.List(context, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := service.identities.Count(context)
	if err != nil {
		return nil, 0, err
	}

	return identities, total, nil
}

// # Housekeeping

/*
PurgeExpiredResetTokens removes expired, never-redeemed recovery tokens.

Description: Idempotent; scheduled hourly but safe to trigger at any time.
Consumed tokens are retained regardless of age.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of tokens removed
  - error: Storage failures
*/
func (service *Service) PurgeExpiredResetTokens(context context.Context) (int64, error) {
	removed, err := service.resetTokens.DeleteExpiredUnused(context, time.Now())
	if err != nil {
		return 0, fmt.Errorf("auth_service_purge_failed: %w", err)
	}

	if removed > 0 {
		service.logger.InfoContext(context, "reset_tokens_purged", slog.Int64("removed", removed))
	}

	return removed, nil
}
