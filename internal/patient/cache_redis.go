// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicore/clinicore/internal/platform/constants"
)

// # Redis Cache

// RedisCache implements the Cache interface on go-redis.
//
// Records are stored as JSON under "clinical:patient:<id>". Nothing here is
// authoritative; a flushed or unavailable Redis only costs latency.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed patient record cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

/*
Get returns the cached record for the given patient ID.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Patient: Cached entity
  - error: ErrCacheMiss, or backend/decoding failures
*/
func (cache *RedisCache) Get(context context.Context, id int64) (*Patient, error) {
	payload, err := cache.client.Get(context, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("patient_cache_get_failed: %w", err)
	}

	record := &Patient{}
	if err := json.Unmarshal(payload, record); err != nil {
		// A corrupt entry is treated as a miss so it gets overwritten.
		return nil, ErrCacheMiss
	}

	return record, nil
}

/*
Set stores the record as JSON with the given TTL.

Parameters:
  - context: context.Context
  - record: *Patient
  - ttl: time.Duration

Returns:
  - error: Encoding or backend failures
*/
func (cache *RedisCache) Set(context context.Context, record *Patient, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("patient_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, cacheKey(record.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("patient_cache_set_failed: %w", err)
	}

	return nil
}

// cacheKey builds the namespaced Redis key for a patient record.
func cacheKey(id int64) string {
	return constants.RedisPrefixPatient + strconv.FormatInt(id, 10)
}
