// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/platform/apperr"
	"github.com/clinicore/clinicore/internal/platform/dberr"
	"github.com/clinicore/clinicore/internal/platform/sec"
	"github.com/clinicore/clinicore/pkg/username"
)

// # Test Doubles

type memoryIdentityRepository struct {
	identities map[string]*Identity // keyed by folded username
	nextID     int
}

func newMemoryIdentityRepository() *memoryIdentityRepository {
	return &memoryIdentityRepository{identities: map[string]*Identity{}}
}

func (m *memoryIdentityRepository) FindByID(_ context.Context, id string) (*Identity, error) {
	for _, identity := range m.identities {
		if identity.ID == id {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryIdentityRepository) FindByUsername(_ context.Context, uname string) (*Identity, error) {
	identity, ok := m.identities[username.Fold(uname)]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *identity
	return &copied, nil
}

func (m *memoryIdentityRepository) Create(_ context.Context, identity *Identity) error {
	key := username.Fold(identity.Username)
	if _, exists := m.identities[key]; exists {
		return apperr.DuplicateUsername()
	}
	if identity.ID == "" {
		m.nextID++
		identity.ID = fmt.Sprintf("identity-%03d", m.nextID)
	}
	stored := *identity
	m.identities[key] = &stored
	return nil
}

func (m *memoryIdentityRepository) UpdatePassword(_ context.Context, identityID, newHash string, mustChange bool) error {
	for _, identity := range m.identities {
		if identity.ID == identityID {
			identity.PasswordHash = newHash
			identity.MustChangePassword = mustChange
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (m *memoryIdentityRepository) List(_ context.Context, limit, offset int) ([]Identity, error) {
	keys := make([]string, 0, len(m.identities))
	for key := range m.identities {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	all := make([]Identity, 0, len(keys))
	for _, key := range keys {
		all = append(all, *m.identities[key])
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memoryIdentityRepository) Count(_ context.Context) (int, error) {
	return len(m.identities), nil
}

type memoryRoleRepository struct {
	roles []RoleRecord
}

func (m *memoryRoleRepository) FindByName(_ context.Context, name string) (*RoleRecord, error) {
	for _, role := range m.roles {
		if role.Name == name {
			copied := role
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRoleRepository) List(_ context.Context) ([]RoleRecord, error) {
	return m.roles, nil
}

type memoryResetTokenRepository struct {
	tokens []*ResetToken
}

func (m *memoryResetTokenRepository) Create(_ context.Context, token *ResetToken) error {
	stored := *token
	if stored.ID == "" {
		stored.ID = "token"
	}
	m.tokens = append(m.tokens, &stored)
	return nil
}

func (m *memoryResetTokenRepository) Consume(_ context.Context, tokenHash string, now time.Time) (string, error) {
	for _, token := range m.tokens {
		if token.TokenHash == tokenHash && token.UsedAt == nil && token.ExpiresAt.After(now) {
			usedAt := now
			token.UsedAt = &usedAt
			return token.IdentityID, nil
		}
	}
	return "", dberr.ErrNotFound
}

func (m *memoryResetTokenRepository) DeleteExpiredUnused(_ context.Context, now time.Time) (int64, error) {
	var kept []*ResetToken
	var removed int64
	for _, token := range m.tokens {
		if token.UsedAt == nil && !token.ExpiresAt.After(now) {
			removed++
			continue
		}
		kept = append(kept, token)
	}
	m.tokens = kept
	return removed, nil
}

type memoryEventRepository struct {
	events []audit.Event
}

func (m *memoryEventRepository) Insert(_ context.Context, event *audit.Event) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryEventRepository) ListRecent(_ context.Context, _, _ int) ([]audit.Event, error) {
	return m.events, nil
}

func (m *memoryEventRepository) Count(_ context.Context) (int, error) {
	return len(m.events), nil
}

type noopMeter struct {
	successes int
	failures  int
	dropped   int
}

func (n *noopMeter) LoginSucceeded()   { n.successes++ }
func (n *noopMeter) LoginFailed()      { n.failures++ }
func (n *noopMeter) AuditWriteFailed() { n.dropped++ }

// # Fixture

type serviceFixture struct {
	service     *Service
	identities  *memoryIdentityRepository
	resetTokens *memoryResetTokenRepository
	events      *memoryEventRepository
	meter       *noopMeter
	tokens      *sec.TokenService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	tokens, err := sec.NewTokenService("test-secret-key", "clinicore.health", time.Hour)
	require.NoError(t, err)

	identities := newMemoryIdentityRepository()
	roles := &memoryRoleRepository{roles: []RoleRecord{
		{ID: "role-admin", Name: "Admin"},
		{ID: "role-doctor", Name: "Doctor"},
		{ID: "role-nurse", Name: "Nurse"},
	}}
	resetTokens := &memoryResetTokenRepository{}
	events := &memoryEventRepository{}
	meter := &noopMeter{}

	recorder := audit.NewRecorder(events, slog.Default(), meter)

	return &serviceFixture{
		service:     NewService(identities, roles, resetTokens, tokens, recorder, meter, slog.Default(), time.Hour),
		identities:  identities,
		resetTokens: resetTokens,
		events:      events,
		meter:       meter,
		tokens:      tokens,
	}
}

func (f *serviceFixture) seedIdentity(t *testing.T, uname, password, roleName string) *Identity {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	identity := &Identity{
		ID:           "id-" + username.Fold(uname),
		Username:     uname,
		PasswordHash: hash,
		RoleID:       "role-" + strings.ToLower(roleName),
		Role:         sec.Role(roleName),
	}
	require.NoError(t, f.identities.Create(context.Background(), identity))
	return identity
}

func (f *serviceFixture) lastEvent(t *testing.T) audit.Event {
	t.Helper()
	require.NotEmpty(t, f.events.events)
	return f.events.events[len(f.events.events)-1]
}

// # Authentication Tests

func TestService_Login_Success(t *testing.T) {
	f := newServiceFixture(t)
	identity := f.seedIdentity(t, "dr_smith", "doctor123", "Doctor")

	credential, err := f.service.Login(context.Background(), LoginInput{
		Username: "dr_smith",
		Password: "doctor123",
		Origin:   "10.0.0.7",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", credential.TokenType)
	assert.Equal(t, int64(3600), credential.ExpiresIn)
	assert.False(t, credential.MustChangePassword)

	// The issued token must decode back to the identity and role.
	claims, err := f.tokens.VerifyToken(credential.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, claims.IdentityID)
	assert.Equal(t, "Doctor", claims.Role)

	event := f.lastEvent(t)
	assert.Equal(t, audit.ActionLoginSuccess, event.Action)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, identity.ID, *event.ActorID)
	require.NotNil(t, event.Origin)
	assert.Equal(t, "10.0.0.7", *event.Origin)
	assert.Equal(t, 1, f.meter.successes)
}

func TestService_Login_CaseInsensitiveUsername(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIdentity(t, "Dr_Smith", "doctor123", "Doctor")

	_, err := f.service.Login(context.Background(), LoginInput{
		Username: "  dr_smith ",
		Password: "doctor123",
	})
	assert.NoError(t, err)
}

func TestService_Login_Failures(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIdentity(t, "dr_smith", "doctor123", "Doctor")

	tests := []struct {
		name       string
		username   string
		password   string
		wantAction string
	}{
		{"unknown_username", "ghost_user", "whatever", "LOGIN_FAILED: ghost_user"},
		{"wrong_password", "dr_smith", "not-the-password", "LOGIN_FAILED: dr_smith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), LoginInput{
				Username: tt.username,
				Password: tt.password,
				Origin:   "10.0.0.7",
			})

			// Both failure modes must be indistinguishable to the caller.
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "INVALID_CREDENTIALS"))
			assert.Equal(t, "Incorrect username or password", err.Error())

			event := f.lastEvent(t)
			assert.Equal(t, tt.wantAction, event.Action)
			assert.Nil(t, event.ActorID, "no identity was proven")
		})
	}

	assert.Equal(t, 2, f.meter.failures)
}

// # Recovery Tests

func TestService_RequestPasswordReset_Neutrality(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIdentity(t, "dr_smith", "doctor123", "Doctor")

	// Unknown account: silently a no-op.
	err := f.service.RequestPasswordReset(context.Background(), "ghost_user", "10.0.0.7")
	require.NoError(t, err)
	assert.Empty(t, f.resetTokens.tokens)
	assert.Empty(t, f.events.events)

	// Known account: token issued and audited.
	err = f.service.RequestPasswordReset(context.Background(), "dr_smith", "10.0.0.7")
	require.NoError(t, err)
	require.Len(t, f.resetTokens.tokens, 1)

	token := f.resetTokens.tokens[0]
	assert.Nil(t, token.UsedAt)
	assert.True(t, token.ExpiresAt.After(time.Now()))
	assert.Len(t, token.TokenHash, 64, "stored value must be the sha256 hex digest, not the secret")

	assert.Equal(t, audit.ActionPasswordResetRequested, f.lastEvent(t).Action)
}

func TestService_ResetPassword_ExactlyOnce(t *testing.T) {
	f := newServiceFixture(t)
	identity := f.seedIdentity(t, "dr_smith", "doctor123", "Doctor")

	// Issue a token directly so the raw secret is known to the test.
	rawSecret := "raw-reset-secret-value"
	require.NoError(t, f.resetTokens.Create(context.Background(), &ResetToken{
		IdentityID: identity.ID,
		TokenHash:  sec.HashToken(rawSecret),
		ExpiresAt:  time.Now().Add(time.Hour),
	}))

	// First redemption succeeds and installs the new password.
	err := f.service.ResetPassword(context.Background(), rawSecret, "brand-new-pass", "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, audit.ActionPasswordResetCompleted, f.lastEvent(t).Action)

	updated, err := f.identities.FindByUsername(context.Background(), "dr_smith")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("brand-new-pass", updated.PasswordHash))
	assert.False(t, sec.CheckPasswordHash("doctor123", updated.PasswordHash))

	// Second redemption of the same secret must fail.
	err = f.service.ResetPassword(context.Background(), rawSecret, "another-pass", "10.0.0.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_OR_EXPIRED_TOKEN"))
}

func TestService_ResetPassword_ExpiredToken(t *testing.T) {
	f := newServiceFixture(t)
	identity := f.seedIdentity(t, "dr_smith", "doctor123", "Doctor")

	rawSecret := "expired-secret"
	require.NoError(t, f.resetTokens.Create(context.Background(), &ResetToken{
		IdentityID: identity.ID,
		TokenHash:  sec.HashToken(rawSecret),
		ExpiresAt:  time.Now().Add(-time.Minute),
	}))

	err := f.service.ResetPassword(context.Background(), rawSecret, "brand-new-pass", "10.0.0.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_OR_EXPIRED_TOKEN"))
}

// # Forced-Change Lifecycle

func TestService_AdminReset_FlagLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	admin := f.seedIdentity(t, "admin_user", "admin-pass-1", "Admin")
	target := f.seedIdentity(t, "nurse_jones", "original-pass", "Nurse")

	// 1. Admin forces a temporary password.
	err := f.service.AdminResetPassword(context.Background(), admin.ID, "nurse_jones", "temporary1", "10.0.0.7")
	require.NoError(t, err)

	event := f.lastEvent(t)
	assert.Equal(t, "PASSWORD_ADMIN_RESET: nurse_jones", event.Action)
	require.NotNil(t, event.ActorID, "administrative resets are attributable")
	assert.Equal(t, admin.ID, *event.ActorID)

	// 2. Next login reports the forced-change flag.
	credential, err := f.service.Login(context.Background(), LoginInput{
		Username: "nurse_jones",
		Password: "temporary1",
	})
	require.NoError(t, err)
	assert.True(t, credential.MustChangePassword)

	// 3. A self-service reset clears the flag.
	rawSecret := "nurse-recovery-secret"
	require.NoError(t, f.resetTokens.Create(context.Background(), &ResetToken{
		IdentityID: target.ID,
		TokenHash:  sec.HashToken(rawSecret),
		ExpiresAt:  time.Now().Add(time.Hour),
	}))
	require.NoError(t, f.service.ResetPassword(context.Background(), rawSecret, "chosen-by-nurse", "10.0.0.7"))

	credential, err = f.service.Login(context.Background(), LoginInput{
		Username: "nurse_jones",
		Password: "chosen-by-nurse",
	})
	require.NoError(t, err)
	assert.False(t, credential.MustChangePassword)
}

func TestService_AdminReset_UnknownUser(t *testing.T) {
	f := newServiceFixture(t)
	admin := f.seedIdentity(t, "admin_user", "admin-pass-1", "Admin")

	err := f.service.AdminResetPassword(context.Background(), admin.ID, "ghost_user", "temporary1", "10.0.0.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

// # Provisioning Tests

func TestService_RegisterIdentity(t *testing.T) {
	f := newServiceFixture(t)

	identity, err := f.service.RegisterIdentity(context.Background(), RegisterInput{
		Username: "  dr_smith ",
		Password: "doctor123",
		RoleName: "Doctor",
	})
	require.NoError(t, err)

	assert.Equal(t, "dr_smith", identity.Username, "stored trimmed")
	assert.Equal(t, sec.RoleDoctor, identity.Role)
	assert.False(t, identity.MustChangePassword)
	assert.NotEqual(t, "doctor123", identity.PasswordHash)
}

func TestService_RegisterIdentity_UnknownRole(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.RegisterIdentity(context.Background(), RegisterInput{
		Username: "dr_smith",
		Password: "doctor123",
		RoleName: "Surgeon",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNKNOWN_ROLE"))
}

func TestService_RegisterIdentity_DuplicateUsername(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIdentity(t, "Dr_Smith", "doctor123", "Doctor")

	// Differs only in case; must still collide.
	_, err := f.service.RegisterIdentity(context.Background(), RegisterInput{
		Username: "dr_smith",
		Password: "doctor456",
		RoleName: "Doctor",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "DUPLICATE_USERNAME"))
}

// # Staff Directory Tests

func TestService_ListIdentities(t *testing.T) {
	f := newServiceFixture(t)
	f.seedIdentity(t, "nurse_jones", "original-pass", "Nurse")
	f.seedIdentity(t, "admin_user", "admin-pass-1", "Admin")

	identities, total, err := f.service.ListIdentities(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, identities, 2)
	assert.Equal(t, "admin_user", identities[0].Username, "ordered by username")
	assert.Equal(t, "nurse_jones", identities[1].Username)

	// The directory payload must never carry password material.
	serialized, err := json.Marshal(identities)
	require.NoError(t, err)
	for _, identity := range identities {
		assert.NotEmpty(t, identity.PasswordHash)
		assert.NotContains(t, string(serialized), identity.PasswordHash)
	}
}

// # Housekeeping Tests

func TestService_PurgeExpiredResetTokens(t *testing.T) {
	f := newServiceFixture(t)
	now := time.Now()
	usedAt := now.Add(-30 * time.Minute)

	f.resetTokens.tokens = []*ResetToken{
		{ID: "live", TokenHash: "h1", ExpiresAt: now.Add(time.Hour)},
		{ID: "expired-unused", TokenHash: "h2", ExpiresAt: now.Add(-time.Hour)},
		{ID: "expired-used", TokenHash: "h3", ExpiresAt: now.Add(-time.Hour), UsedAt: &usedAt},
	}

	removed, err := f.service.PurgeExpiredResetTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// Consumed tokens survive purging regardless of age.
	var ids []string
	for _, token := range f.resetTokens.tokens {
		ids = append(ids, token.ID)
	}
	assert.ElementsMatch(t, []string{"live", "expired-used"}, ids)
}
