// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Architecture
//
// Repository implementations call [Wrap] on every error path so the service
// layer only ever sees [apperr.AppError] values. The SQLSTATE mapping below
// also turns insert races on the staff username uniqueness index into the
// same DUPLICATE_USERNAME response the pre-flight check produces.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicore/clinicore/internal/platform/apperr"
)

// Postgres SQLSTATE codes this service cares about.
const (
	// sqlstateUniqueViolation is raised by the LOWER(username) unique index.
	sqlstateUniqueViolation = "23505"
	// sqlstateFKViolation is raised when a referenced role row is missing.
	sqlstateFKViolation = "23503"
	// sqlstateConnClass prefixes all connection-level failures (class 08).
	sqlstateConnClass = "08"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE-driven mapping
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlstateUniqueViolation:
			return apperr.DuplicateUsername()
		case pgErr.Code == sqlstateFKViolation:
			return apperr.ValidationError("Referenced record does not exist")
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == sqlstateConnClass:
			return apperr.ServiceUnavailable(err)
		}
	}

	// 3. Connection errors raised before a SQLSTATE is available.
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.ServiceUnavailable(err)
	}

	// 4. Everything else becomes an Internal Server Error.
	return apperr.Internal(err)
}
