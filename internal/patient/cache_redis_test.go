// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client), server
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	record := &Patient{
		ID:             7,
		FullName:       "Alice Moreau",
		MedicalHistory: "Hypertension, 2019 bypass",
		UpdatedAt:      time.Now().Truncate(time.Second),
	}

	require.NoError(t, cache.Set(ctx, record, time.Minute))
	assert.True(t, server.Exists("clinical:patient:7"))

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, record.FullName, got.FullName)
	assert.Equal(t, record.MedicalHistory, got.MedicalHistory)
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	record := &Patient{ID: 7, FullName: "Alice Moreau"}
	require.NoError(t, cache.Set(ctx, record, time.Minute))

	// miniredis advances TTLs manually.
	server.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, server := newTestCache(t)

	require.NoError(t, server.Set("clinical:patient:7", "{not json"))

	_, err := cache.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
