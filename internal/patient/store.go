// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by a [Cache] when the record is not cached.
// It is a control-flow signal, not a failure.
var ErrCacheMiss = errors.New("patient: cache miss")

// # Record Data Access

// Repository defines the data access contract for patient records.
type Repository interface {

	/*
		FindByID returns the patient record with the given identifier.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Patient: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, id int64) (*Patient, error)
}

// # Record Caching

// Cache defines the volatile read-through layer in front of [Repository].
//
// Implementations must treat every failure as survivable: the repository
// remains the source of truth and callers fall through to it.
type Cache interface {

	/*
		Get returns the cached record, ErrCacheMiss, or a backend error.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Patient: Cached entity
		  - error: ErrCacheMiss or backend failures
	*/
	Get(context context.Context, id int64) (*Patient, error)

	/*
		Set stores the record for the given duration.

		Parameters:
		  - context: context.Context
		  - record: *Patient
		  - ttl: time.Duration

		Returns:
		  - error: Backend failures
	*/
	Set(context context.Context, record *Patient, ttl time.Duration) error
}
