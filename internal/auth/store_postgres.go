// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// # Storage Implementations
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined interfaces (e.g., [IdentityRepository]) using
// the [pgxpool.Pool] connection manager. Storage-specific errors are mapped
// to domain-friendly [apperr.AppError] types via [dberr.Wrap] to avoid
// leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/dberr"
	"github.com/clinicore/clinicore/internal/platform/sec"
	"github.com/clinicore/clinicore/pkg/username"
	"github.com/clinicore/clinicore/pkg/uuidv7"
)

// # Identity Repository

// PostgresIdentityRepository implements the IdentityRepository interface using pgx.
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository creates a new PostgreSQL implementation of the IdentityRepository.
func NewIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{pool: pool}
}

/*
Create persists a new identity record into the staff.identity table.

Description: Assigns ID and timestamps if the caller left them zero, then
inserts the full row in one statement so the forced-change flag can never
be missing. An insert race on the username is caught by the
LOWER(username) unique index and surfaced as DUPLICATE_USERNAME.

Parameters:
  - context: context.Context
  - identity: *Identity (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresIdentityRepository) Create(context context.Context, identity *Identity) error {
	const query = `
		INSERT INTO staff.identity (
			id, username, passwordhash, roleid, mustchangepassword, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if identity.ID == "" {
		identity.ID = uuidv7.New()
	}

	now := time.Now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		identity.ID,
		identity.Username,
		identity.PasswordHash,
		identity.RoleID,
		identity.MustChangePassword,
		identity.CreatedAt,
		identity.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("auth_identity_repo_create_failed: %w", err))
	}

	return nil
}

/*
FindByUsername retrieves an identity by username, case-insensitively.

Description: Folds both sides with LOWER() so `Dr_Smith` and `dr_smith`
resolve to the same account. The unique index on LOWER(username) makes the
comparison index-backed.

Parameters:
  - context: context.Context
  - uname: string (Trimmed input)

Returns:
  - *Identity: Hydrated entity with resolved role name
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresIdentityRepository) FindByUsername(context context.Context, uname string) (*Identity, error) {
	const query = `
		SELECT i.id, i.username, i.passwordhash, i.roleid, r.name, i.mustchangepassword, i.createdat, i.updatedat
		FROM staff.identity i
		JOIN staff.role r ON r.id = i.roleid
		WHERE LOWER(i.username) = LOWER($1)`

	return repository.scanIdentity(
		repository.pool.QueryRow(context, query, username.Fold(uname)),
		"auth_identity_repo_find_by_username_failed",
	)
}

/*
FindByID retrieves an identity by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Identity: Hydrated entity with resolved role name
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresIdentityRepository) FindByID(context context.Context, id string) (*Identity, error) {
	const query = `
		SELECT i.id, i.username, i.passwordhash, i.roleid, r.name, i.mustchangepassword, i.createdat, i.updatedat
		FROM staff.identity i
		JOIN staff.role r ON r.id = i.roleid
		WHERE i.id = $1`

	return repository.scanIdentity(
		repository.pool.QueryRow(context, query, id),
		"auth_identity_repo_find_by_id_failed",
	)
}

/*
UpdatePassword replaces the password hash and forced-change flag together.

Parameters:
  - context: context.Context
  - identityID: string
  - newHash: string
  - mustChange: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresIdentityRepository) UpdatePassword(context context.Context, identityID, newHash string, mustChange bool) error {
	const query = `
		UPDATE staff.identity
		SET passwordhash = $2, mustchangepassword = $3, updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, identityID, newHash, mustChange, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("auth_identity_repo_update_password_failed: %w", err))
	}

	return nil
}

/*
List retrieves a page of identities ordered by username.

Description: Serves the admin staff-directory listing. Password hashes are
scanned (the entity carries them) but never serialized; the JSON mapping
omits the field.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Identity: Hydrated entities with resolved role names
  - error: Database retrieval failures
*/
func (repository *PostgresIdentityRepository) List(context context.Context, limit, offset int) ([]Identity, error) {
	const query = `
		SELECT i.id, i.username, i.passwordhash, i.roleid, r.name, i.mustchangepassword, i.createdat, i.updatedat
		FROM staff.identity i
		JOIN staff.role r ON r.id = i.roleid
		ORDER BY LOWER(i.username)
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("auth_identity_repo_list_failed: %w", err))
	}
	defer rows.Close()

	identities := make([]Identity, 0, limit)
	for rows.Next() {
		var identity Identity
		var roleName string
		if err := rows.Scan(
			&identity.ID,
			&identity.Username,
			&identity.PasswordHash,
			&identity.RoleID,
			&roleName,
			&identity.MustChangePassword,
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("auth_identity_repo_scan_failed: %w", err))
		}
		identity.Role = sec.Role(roleName)
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("auth_identity_repo_rows_failed: %w", err))
	}

	return identities, nil
}

/*
Count returns the total number of staff identities.

Parameters:
  - context: context.Context

Returns:
  - int: Total identity count
  - error: Database retrieval failures
*/
func (repository *PostgresIdentityRepository) Count(context context.Context) (int, error) {
	const query = "SELECT COUNT(*) FROM staff.identity"

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("auth_identity_repo_count_failed: %w", err))
	}

	return total, nil
}

// scanIdentity hydrates an Identity from a single-row query.
func (repository *PostgresIdentityRepository) scanIdentity(row pgx.Row, failLabel string) (*Identity, error) {
	identity := &Identity{}
	var roleName string

	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.PasswordHash,
		&identity.RoleID,
		&roleName,
		&identity.MustChangePassword,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, dberr.Wrap(fmt.Errorf("%s: %w", failLabel, err))
	}

	identity.Role = sec.Role(roleName)
	return identity, nil
}

// # Role Repository

// PostgresRoleRepository implements the RoleRepository interface using pgx.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new PostgreSQL implementation of the RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

/*
FindByName retrieves a role record by its exact name.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *RoleRecord: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRoleRepository) FindByName(context context.Context, name string) (*RoleRecord, error) {
	const query = "SELECT id, name FROM staff.role WHERE name = $1"

	role := &RoleRecord{}
	err := repository.pool.QueryRow(context, query, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, dberr.Wrap(fmt.Errorf("auth_role_repo_find_by_name_failed: %w", err))
	}

	return role, nil
}

/*
List retrieves every role, ordered by name.

Parameters:
  - context: context.Context

Returns:
  - []RoleRecord: Hydrated entities
  - error: Database retrieval failures
*/
func (repository *PostgresRoleRepository) List(context context.Context) ([]RoleRecord, error) {
	const query = "SELECT id, name FROM staff.role ORDER BY name"

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("auth_role_repo_list_failed: %w", err))
	}
	defer rows.Close()

	var roles []RoleRecord
	for rows.Next() {
		var role RoleRecord
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("auth_role_repo_scan_failed: %w", err))
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("auth_role_repo_rows_failed: %w", err))
	}

	return roles, nil
}

// # Reset Token Repository

// PostgresResetTokenRepository implements the ResetTokenRepository interface using pgx.
type PostgresResetTokenRepository struct {
	pool *pgxpool.Pool
}

// NewResetTokenRepository creates a new PostgreSQL implementation of the ResetTokenRepository.
func NewResetTokenRepository(pool *pgxpool.Pool) *PostgresResetTokenRepository {
	return &PostgresResetTokenRepository{pool: pool}
}

/*
Create persists a freshly issued reset token into staff.resettoken.

Parameters:
  - context: context.Context
  - token: *ResetToken (TokenHash already computed)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresResetTokenRepository) Create(context context.Context, token *ResetToken) error {
	const query = `
		INSERT INTO staff.resettoken (
			id, identityid, tokenhash, expiresat, usedat, createdat
		) VALUES ($1, $2, $3, $4, NULL, $5)`

	if token.ID == "" {
		token.ID = uuidv7.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.IdentityID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("auth_reset_token_repo_create_failed: %w", err))
	}

	return nil
}

/*
Consume atomically redeems the token matching the given hash.

Description: A single conditional UPDATE transitions the row from unused to
used. Postgres row-level locking guarantees that of two concurrent
redemptions, exactly one observes `usedat IS NULL` and wins; the loser (and
any expired or unknown hash) sees zero rows and fails with ErrNotFound.

Parameters:
  - context: context.Context
  - tokenHash: string
  - now: time.Time

Returns:
  - string: IdentityID owning the token
  - error: dberr.ErrNotFound or persistence failures
*/
func (repository *PostgresResetTokenRepository) Consume(context context.Context, tokenHash string, now time.Time) (string, error) {
	const query = `
		UPDATE staff.resettoken
		SET usedat = $2
		WHERE tokenhash = $1 AND usedat IS NULL AND expiresat > $2
		RETURNING identityid`

	var identityID string
	err := repository.pool.QueryRow(context, query, tokenHash, now).Scan(&identityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", dberr.ErrNotFound
		}
		return "", dberr.Wrap(fmt.Errorf("auth_reset_token_repo_consume_failed: %w", err))
	}

	return identityID, nil
}

/*
DeleteExpiredUnused removes expired tokens that were never redeemed.

Description: Consumed tokens are deliberately retained; their usedat
timestamps are part of the security record.

Parameters:
  - context: context.Context
  - now: time.Time

Returns:
  - int64: Number of rows removed
  - error: Persistence failures
*/
func (repository *PostgresResetTokenRepository) DeleteExpiredUnused(context context.Context, now time.Time) (int64, error) {
	const query = "DELETE FROM staff.resettoken WHERE expiresat <= $1 AND usedat IS NULL"

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, dberr.Wrap(fmt.Errorf("auth_reset_token_repo_purge_failed: %w", err))
	}

	return tag.RowsAffected(), nil
}
