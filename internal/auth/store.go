// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package auth

import (
	"context"
	"time"
)

// # Identity Data Access

// IdentityRepository defines the data access contract for staff identities.
type IdentityRepository interface {

	/*
		FindByID returns the identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Identity: Hydrated entity with resolved role name
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Identity, error)

	/*
		FindByUsername returns the identity with the given username.
		The lookup is case-insensitive; callers pass the trimmed input as-is.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Identity: Hydrated entity with resolved role name
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*Identity, error)

	/*
		Create persists a brand-new staff identity.

		Parameters:
		  - context: context.Context
		  - identity: *Identity

		Returns:
		  - error: Uniqueness violations or persistence failures
	*/
	Create(context context.Context, identity *Identity) error

	/*
		UpdatePassword replaces the password hash and the forced-change flag
		in a single statement, so the two can never diverge.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - newHash: string
		  - mustChange: bool

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, identityID, newHash string, mustChange bool) error

	/*
		List returns a page of identities ordered by username.

		Parameters:
		  - context: context.Context
		  - limit: int (Page size)
		  - offset: int (Rows to skip)

		Returns:
		  - []Identity: Hydrated entities with resolved role names
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]Identity, error)

	/*
		Count returns the total number of staff identities.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Total identity count
		  - error: Database retrieval failures
	*/
	Count(context context.Context) (int, error)
}

// # Role Data Access

// RoleRepository defines the read-only contract for the fixed role table.
type RoleRepository interface {

	/*
		FindByName returns the role with the given exact name.

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - *RoleRecord: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByName(context context.Context, name string) (*RoleRecord, error)

	/*
		List returns every role, ordered by name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []RoleRecord: Hydrated entities
		  - error: Database retrieval failures
	*/
	List(context context.Context) ([]RoleRecord, error)
}

// # Reset Token Data Access

// ResetTokenRepository defines the contract for single-use recovery tokens.
//
// Tokens live in PostgreSQL rather than a volatile store: the consumed
// marker must survive restarts, and redemption requires a storage-level
// atomic transition so two racing redemptions cannot both succeed.
type ResetTokenRepository interface {

	/*
		Create persists a freshly issued token.

		Parameters:
		  - context: context.Context
		  - token: *ResetToken (TokenHash already computed)

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *ResetToken) error

	/*
		Consume atomically redeems the token matching the given hash.
		Exactly one caller can win; a consumed, expired, or unknown hash
		fails with dberr.ErrNotFound.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - now: time.Time (Redemption instant, also stored as usedat)

		Returns:
		  - string: IdentityID owning the token
		  - error: dberr.ErrNotFound or persistence failures
	*/
	Consume(context context.Context, tokenHash string, now time.Time) (string, error)

	/*
		DeleteExpiredUnused removes tokens past their expiry that were never
		redeemed. Consumed tokens are kept as part of the security record.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of rows removed
		  - error: Persistence failures
	*/
	DeleteExpiredUnused(context context.Context, now time.Time) (int64, error)
}
