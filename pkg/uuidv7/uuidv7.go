// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the primary key type for all Clinicore tables (identities, reset
// tokens, audit events). Because it is time-sortable, audit events can be
// ordered by key without a secondary index, and PostgreSQL B-tree indexes
// stay append-friendly instead of fragmenting like they do with random UUIDv4.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
