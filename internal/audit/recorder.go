// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package audit

import (
	"context"
	"log/slog"

	"github.com/clinicore/clinicore/internal/platform/ctxutil"
)

// FailureMeter counts audit entries that could not be persisted.
//
// # Why an interface?
//
// The recorder only needs one counter from the metrics registry. Depending
// on this narrow interface keeps tests free of Prometheus plumbing.
type FailureMeter interface {
	AuditWriteFailed()
}

// Recorder is the write-side facade over the security trail.
//
// # Best-Effort Semantics
//
// Record never returns an error. The operations being audited (logins,
// resets, emergency access) must not fail because the trail is briefly
// unavailable; a dropped entry is surfaced through the error log and the
// failure counter instead, where it can be alerted on.
type Recorder struct {
	events EventRepository
	logger *slog.Logger
	meter  FailureMeter
}

// NewRecorder creates a Recorder writing through the given repository.
func NewRecorder(events EventRepository, logger *slog.Logger, meter FailureMeter) *Recorder {
	return &Recorder{
		events: events,
		logger: logger,
		meter:  meter,
	}
}

/*
Record appends one event to the security trail.

Description: Builds the event and inserts it. On failure the event payload
is logged in full so the trail can be reconstructed manually, and the
failure counter is incremented.

Parameters:
  - context: context.Context
  - actorID: *string (nil for unauthenticated events)
  - action: string (one of the package action labels/formatters)
  - resourceID: *string (nil when the action has no single target)
  - origin: string (client IP; empty when no request produced the event)
*/
func (recorder *Recorder) Record(context context.Context, actorID *string, action string, resourceID *string, origin string) {
	event := &Event{
		ActorID:    actorID,
		Action:     action,
		ResourceID: resourceID,
	}
	// An absent origin is stored as NULL, never as an empty string.
	if origin != "" {
		event.Origin = &origin
	}

	if err := recorder.events.Insert(context, event); err != nil {
		recorder.meter.AuditWriteFailed()

		recorder.logger.ErrorContext(context, "audit_write_failed",
			slog.Any("error", err),
			slog.String("request_id", ctxutil.GetRequestID(context)),
			slog.String("action", action),
			slog.Any("actor_id", actorID),
			slog.Any("resource_id", resourceID),
			slog.String("origin", origin),
		)
	}
}

// # Helpers

// ActorRef adapts a staff identity ID into the nullable actor reference.
func ActorRef(identityID string) *string {
	return &identityID
}

// ResourceRef adapts a resource identifier into the nullable reference.
func ResourceRef(resourceID string) *string {
	return &resourceID
}
