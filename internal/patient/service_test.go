// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/platform/apperr"
)

// # Test Doubles

type memoryRepository struct {
	records map[int64]*Patient
	reads   int
}

func (m *memoryRepository) FindByID(_ context.Context, id int64) (*Patient, error) {
	m.reads++
	record, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound("Patient")
	}
	copied := *record
	return &copied, nil
}

type memoryCache struct {
	entries map[int64]*Patient
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[int64]*Patient{}}
}

func (m *memoryCache) Get(_ context.Context, id int64) (*Patient, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.entries[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	copied := *record
	return &copied, nil
}

func (m *memoryCache) Set(_ context.Context, record *Patient, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	copied := *record
	m.entries[record.ID] = &copied
	return nil
}

type memoryEventRepository struct {
	events []audit.Event
}

func (m *memoryEventRepository) Insert(_ context.Context, event *audit.Event) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryEventRepository) ListRecent(_ context.Context, _, _ int) ([]audit.Event, error) {
	return m.events, nil
}

func (m *memoryEventRepository) Count(_ context.Context) (int, error) {
	return len(m.events), nil
}

type fakeMeter struct {
	hits       int
	misses     int
	cacheErrs  int
	breakGlass int
	dropped    int
}

func (f *fakeMeter) PatientCacheHit()   { f.hits++ }
func (f *fakeMeter) PatientCacheMiss()  { f.misses++ }
func (f *fakeMeter) PatientCacheError() { f.cacheErrs++ }
func (f *fakeMeter) BreakGlassAccess()  { f.breakGlass++ }
func (f *fakeMeter) AuditWriteFailed()  { f.dropped++ }

// # Fixture

type patientFixture struct {
	service *Service
	repo    *memoryRepository
	cache   *memoryCache
	events  *memoryEventRepository
	meter   *fakeMeter
}

func newPatientFixture() *patientFixture {
	repo := &memoryRepository{records: map[int64]*Patient{
		7: {ID: 7, FullName: "Alice Moreau", MedicalHistory: "Hypertension, 2019 bypass"},
	}}
	cache := newMemoryCache()
	events := &memoryEventRepository{}
	meter := &fakeMeter{}
	recorder := audit.NewRecorder(events, slog.Default(), meter)

	return &patientFixture{
		service: NewService(repo, cache, recorder, meter, slog.Default()),
		repo:    repo,
		cache:   cache,
		events:  events,
		meter:   meter,
	}
}

// # Read-Through Cache Tests

func TestService_Get_ReadThrough(t *testing.T) {
	f := newPatientFixture()

	// First read: miss, hits storage, fills the cache.
	record, err := f.service.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alice Moreau", record.FullName)
	assert.Equal(t, 1, f.meter.misses)
	assert.Equal(t, 1, f.repo.reads)

	// Second read: served from cache, storage untouched.
	record, err = f.service.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alice Moreau", record.FullName)
	assert.Equal(t, 1, f.meter.hits)
	assert.Equal(t, 1, f.repo.reads)
}

func TestService_Get_CacheFailureFallsThrough(t *testing.T) {
	f := newPatientFixture()
	f.cache.getErr = errors.New("connection refused")
	f.cache.setErr = errors.New("connection refused")

	record, err := f.service.Get(context.Background(), 7)
	require.NoError(t, err, "cache outage must not fail reads")
	assert.Equal(t, int64(7), record.ID)
	assert.Equal(t, 2, f.meter.cacheErrs, "probe and fill failures both counted")
}

func TestService_Get_UnknownPatient(t *testing.T) {
	f := newPatientFixture()

	_, err := f.service.Get(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

// # Break-Glass Tests

func TestService_BreakGlass_AuditsBeforeReturning(t *testing.T) {
	f := newPatientFixture()

	record, err := f.service.BreakGlass(context.Background(), "doctor-1", 7, "cardiac emergency", "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, "BREAK-GLASS: cardiac emergency", event.Action)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, "doctor-1", *event.ActorID)
	require.NotNil(t, event.ResourceID)
	assert.Equal(t, "7", *event.ResourceID)
	assert.Equal(t, 1, f.meter.breakGlass)
}

func TestService_BreakGlass_MissingPatientStillAudited(t *testing.T) {
	f := newPatientFixture()

	_, err := f.service.BreakGlass(context.Background(), "doctor-1", 999, "unconscious arrival", "10.0.0.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	// The trail entry stands even though the record does not exist.
	require.Len(t, f.events.events, 1)
	assert.Equal(t, "BREAK-GLASS: unconscious arrival", f.events.events[0].Action)
}

func TestService_BreakGlass_BypassesCache(t *testing.T) {
	f := newPatientFixture()

	// Poison the cache with a stale copy.
	stale := &Patient{ID: 7, FullName: "STALE", MedicalHistory: "stale"}
	require.NoError(t, f.cache.Set(context.Background(), stale, time.Minute))

	record, err := f.service.BreakGlass(context.Background(), "doctor-1", 7, "cardiac emergency", "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "Alice Moreau", record.FullName, "emergency reads must see the authoritative row")
}
