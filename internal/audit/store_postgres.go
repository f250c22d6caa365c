// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/dberr"
	"github.com/clinicore/clinicore/pkg/uuidv7"
)

// # Event Repository

// PostgresEventRepository implements the EventRepository interface using pgx.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL implementation of the EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

/*
Insert appends a new event record into the system.auditevent table.

Description: Assigns the UUIDv7 primary key and timestamp if the caller left
them zero, then persists the row. The table accepts INSERT and SELECT only.

Parameters:
  - context: context.Context
  - event: *Event (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresEventRepository) Insert(context context.Context, event *Event) error {
	const query = `
		INSERT INTO system.auditevent (
			id, actorid, action, resourceid, origin, createdat
		) VALUES ($1, $2, $3, $4, $5, $6)`

	if event.ID == "" {
		event.ID = uuidv7.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		event.ID,
		event.ActorID,
		event.Action,
		event.ResourceID,
		event.Origin,
		event.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("audit_event_repo_insert_failed: %w", err))
	}

	return nil
}

/*
ListRecent retrieves a page of events ordered newest-first.

Description: Orders by createdat descending with the event ID as a
tiebreaker so pagination stays stable across same-timestamp rows.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Event: Hydrated entities
  - error: Database retrieval failures
*/
func (repository *PostgresEventRepository) ListRecent(context context.Context, limit, offset int) ([]Event, error) {
	const query = `
		SELECT id, actorid, action, resourceid, origin, createdat
		FROM system.auditevent
		ORDER BY createdat DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("audit_event_repo_list_failed: %w", err))
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.ActorID,
			&event.Action,
			&event.ResourceID,
			&event.Origin,
			&event.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("audit_event_repo_scan_failed: %w", err))
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("audit_event_repo_rows_failed: %w", err))
	}

	return events, nil
}

/*
Count returns the total number of events in the trail.

Parameters:
  - context: context.Context

Returns:
  - int: Total event count
  - error: Database retrieval failures
*/
func (repository *PostgresEventRepository) Count(context context.Context) (int, error) {
	const query = "SELECT COUNT(*) FROM system.auditevent"

	var total int
	if err := repository.pool.QueryRow(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("audit_event_repo_count_failed: %w", err))
	}

	return total, nil
}
