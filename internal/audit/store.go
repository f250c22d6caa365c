// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package audit

import (
	"context"
)

// # Event Data Access

// EventRepository defines the data access contract for the security trail.
//
// The contract is deliberately append-and-read only. There is no update or
// delete operation, and the storage schema revokes those privileges too.
type EventRepository interface {

	/*
		Insert appends a new event to the trail.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, event *Event) error

	/*
		ListRecent returns events ordered newest-first.

		Parameters:
		  - context: context.Context
		  - limit: int (Page size)
		  - offset: int (Rows to skip)

		Returns:
		  - []Event: Hydrated entities
		  - error: Database retrieval failures
	*/
	ListRecent(context context.Context, limit, offset int) ([]Event, error)

	/*
		Count returns the total number of events in the trail.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Total event count
		  - error: Database retrieval failures
	*/
	Count(context context.Context) (int, error)
}
