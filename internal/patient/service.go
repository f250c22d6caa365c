// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
)

// # Contracts & Types

// CacheMeter counts cache outcomes and emergency accesses.
type CacheMeter interface {
	PatientCacheHit()
	PatientCacheMiss()
	PatientCacheError()
	BreakGlassAccess()
}

// cacheTTL bounds record staleness. Records change rarely; a short TTL
// keeps the window small without a write-through invalidation protocol.
const cacheTTL = 5 * time.Minute

// Service implements patient record access use cases.
//
// Authorization (clinical role required) is enforced by the router's
// permission middleware before any of these methods run; the service
// receives already-verified caller identities.
type Service struct {
	records  Repository
	cache    Cache
	recorder *audit.Recorder
	meter    CacheMeter
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(records Repository, cache Cache, recorder *audit.Recorder, meter CacheMeter, logger *slog.Logger) *Service {
	return &Service{
		records:  records,
		cache:    cache,
		recorder: recorder,
		meter:    meter,
		logger:   logger,
	}
}

// # Record Access

/*
Get returns a patient record, served read-through from the cache.

Description: A cache hit short-circuits storage entirely. Misses and cache
backend failures both fall through to PostgreSQL; a backend failure is
counted and logged but never surfaces to the caller.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Patient: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (service *Service) Get(context context.Context, id int64) (*Patient, error) {

	// ── 1. Cache Probe ────────────────────────────────────────────────────
	cached, err := service.cache.Get(context, id)
	switch {
	case err == nil:
		service.meter.PatientCacheHit()
		return cached, nil
	case errors.Is(err, ErrCacheMiss):
		service.meter.PatientCacheMiss()
	default:
		service.meter.PatientCacheError()
		service.logger.WarnContext(context, "patient_cache_unavailable", slog.Any("error", err))
	}

	// ── 2. Authoritative Read ─────────────────────────────────────────────
	record, err := service.records.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	// ── 3. Cache Fill ─────────────────────────────────────────────────────
	if err := service.cache.Set(context, record, cacheTTL); err != nil {
		service.meter.PatientCacheError()
		service.logger.WarnContext(context, "patient_cache_fill_failed", slog.Any("error", err))
	}

	return record, nil
}

// # Emergency Access

/*
BreakGlass performs an emergency read of a patient record.

Description: The audit event is written before the record is fetched, so
the access is on the trail even if the fetch then fails or the record does
not exist. The read bypasses the cache: an emergency override must see the
authoritative row. The override is never refused once a justification is
supplied — availability over restriction — but it is always logged.

Parameters:
  - context: context.Context
  - actorID: string (Verified caller identity)
  - id: int64
  - reason: string (Non-empty justification, validated at the boundary)
  - origin: string (Client IP)

Returns:
  - *Patient: Hydrated entity
  - error: apperr.NotFound or database errors; the audit event stands either way
*/
func (service *Service) BreakGlass(context context.Context, actorID string, id int64, reason, origin string) (*Patient, error) {

	// ── 1. Unconditional Audit ────────────────────────────────────────────
	resource := strconv.FormatInt(id, 10)
	service.recorder.Record(context, audit.ActorRef(actorID), audit.ActionBreakGlass(reason), audit.ResourceRef(resource), origin)
	service.meter.BreakGlassAccess()

	service.logger.WarnContext(context, "break_glass_access",
		slog.String("actor_id", actorID),
		slog.Int64("patient_id", id),
		slog.String("reason", reason),
	)

	// ── 2. Authoritative Read ─────────────────────────────────────────────
	return service.records.FindByID(context, id)
}
