// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
Package audit implements the append-only security trail for the Clinicore API.

Every security-relevant action (logins, password recovery, administrative
resets, emergency record access) is recorded as an immutable event. Events
are never updated or deleted; the trail only grows.

Design notes:

  - Failed logins are recorded with a nil actor, since no identity was
    proven. The attempted username is folded into the action text instead.
  - Writes are best-effort through [Recorder]: a storage failure must never
    abort the operation being audited, so failures surface via structured
    logs and a Prometheus counter rather than as request errors.
*/
package audit

import (
	"fmt"
	"time"
)

// # Action Vocabulary

// Fixed action labels. Formatter helpers below produce the parameterized
// variants so callers never assemble action strings by hand.
const (
	// ActionLoginSuccess records a proven credential check.
	ActionLoginSuccess = "LOGIN_SUCCESS"

	// ActionPasswordResetRequested records a recovery token being issued.
	ActionPasswordResetRequested = "PASSWORD_RESET_REQUESTED"

	// ActionPasswordResetCompleted records a recovery token being redeemed.
	ActionPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
)

// ActionLoginFailed formats the failed-login action. The attempted username
// is embedded in the action because no actor identity exists for the event.
func ActionLoginFailed(username string) string {
	return fmt.Sprintf("LOGIN_FAILED: %s", username)
}

// ActionPasswordAdminReset formats the administrative-reset action. The
// actor of the event is the administrator; the affected staff member is
// named in the action text.
func ActionPasswordAdminReset(username string) string {
	return fmt.Sprintf("PASSWORD_ADMIN_RESET: %s", username)
}

// ActionBreakGlass formats the emergency-access action with the caller's
// stated justification.
func ActionBreakGlass(reason string) string {
	return fmt.Sprintf("BREAK-GLASS: %s", reason)
}

// # Entity

// Event is a single immutable entry in the security trail.
type Event struct {
	// ID is the UUIDv7 primary key, time-sortable by construction.
	ID string `json:"id"`

	// ActorID references the staff identity that performed the action.
	// Nil for unauthenticated events such as failed logins.
	ActorID *string `json:"actor_id"`

	// Action is the event label, possibly parameterized (see formatters).
	Action string `json:"action"`

	// ResourceID names the affected resource (e.g. a patient record ID).
	// Nil when the action has no single target.
	ResourceID *string `json:"resource_id"`

	// Origin is the client IP the request arrived from.
	// Nil when the event was not produced by an HTTP request.
	Origin *string `json:"origin"`

	// CreatedAt is the event timestamp, assigned at insert time.
	CreatedAt time.Time `json:"created_at"`
}
