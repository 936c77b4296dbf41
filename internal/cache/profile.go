// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/dealrank/internal/config"
	"github.com/tomtom215/dealrank/internal/metrics"
	"github.com/tomtom215/dealrank/internal/ranking"
)

const (
	profileKeyPrefix = "dealrank:profile:"
	cacheTypeMemory  = "profile_memory"
	cacheTypeRedis   = "profile_redis"
	redisOpTimeout   = 250 * time.Millisecond
)

// ProfileCache is a ranking.ProfileCache that owns resources.
type ProfileCache interface {
	ranking.ProfileCache
	Close() error
}

var (
	_ ProfileCache = (*MemoryProfileCache)(nil)
	_ ProfileCache = (*RedisProfileCache)(nil)
)

// NewProfileCache picks Redis when an address is configured and the server
// answers a ping, and the in-memory LRU otherwise.
func NewProfileCache(ctx context.Context, cfg *config.CacheConfig, logger zerolog.Logger) (ProfileCache, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("profile cache disabled")
	}
	logger = logger.With().Str("component", "profile_cache").Logger()

	if cfg.RedisAddr == "" {
		logger.Info().Dur("ttl", cfg.TTL).Msg("Using in-memory profile cache")
		return NewMemoryProfileCache(0, cfg.TTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, falling back to in-memory profile cache")
		return NewMemoryProfileCache(0, cfg.TTL), nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.TTL).Msg("Using Redis profile cache")
	return NewRedisProfileCache(client, cfg.TTL, cfg.BreakerFailures, logger), nil
}

// MemoryProfileCache keeps profiles in a process-local LRU.
type MemoryProfileCache struct {
	lru *LRU[*ranking.Profile]
}

// NewMemoryProfileCache creates an LRU-backed profile cache.
func NewMemoryProfileCache(capacity int, ttl time.Duration) *MemoryProfileCache {
	return &MemoryProfileCache{lru: NewLRU[*ranking.Profile](capacity, ttl)}
}

// GetProfile implements ranking.ProfileCache.
func (m *MemoryProfileCache) GetProfile(_ context.Context, userID string) (*ranking.Profile, bool) {
	p, ok := m.lru.Get(userID)
	metrics.RecordCacheLookup(cacheTypeMemory, ok)
	return p, ok
}

// SetProfile implements ranking.ProfileCache.
func (m *MemoryProfileCache) SetProfile(_ context.Context, p *ranking.Profile) {
	if p == nil {
		return
	}
	m.lru.Add(p.UserID, p)
}

// Invalidate drops userID's profile.
func (m *MemoryProfileCache) Invalidate(_ context.Context, userID string) {
	m.lru.Remove(userID)
}

// Close is a no-op.
func (m *MemoryProfileCache) Close() error { return nil }

// RedisProfileCache stores JSON-encoded profiles in Redis.
type RedisProfileCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

// NewRedisProfileCache wraps client. breakerFailures consecutive failures
// open the circuit; 0 uses the default.
func NewRedisProfileCache(client redis.UniversalClient, ttl time.Duration, breakerFailures uint32, logger zerolog.Logger) *RedisProfileCache { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisProfileCache{
		client:  client,
		ttl:     ttl,
		breaker: newBreaker[[]byte]("redis-profile-cache", breakerFailures, logger),
		logger:  logger,
	}
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// GetProfile implements ranking.ProfileCache. Missing keys, decode errors
// and an open breaker are all misses.
func (r *RedisProfileCache) GetProfile(ctx context.Context, userID string) (*ranking.Profile, bool) {
	raw, err := r.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		b, err := r.client.Get(opCtx, profileKey(userID)).Bytes()
		if errors.Is(err, redis.Nil) {
			// A missing key is not a backend failure.
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		r.fail("get", userID, err)
		metrics.RecordCacheLookup(cacheTypeRedis, false)
		return nil, false
	}
	if raw == nil {
		metrics.RecordCacheLookup(cacheTypeRedis, false)
		return nil, false
	}

	var p ranking.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		r.fail("decode", userID, err)
		metrics.RecordCacheLookup(cacheTypeRedis, false)
		return nil, false
	}
	metrics.RecordCacheLookup(cacheTypeRedis, true)
	return &p, true
}

// SetProfile implements ranking.ProfileCache.
func (r *RedisProfileCache) SetProfile(ctx context.Context, p *ranking.Profile) {
	if p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		r.fail("encode", p.UserID, err)
		return
	}
	_, err = r.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return nil, r.client.Set(opCtx, profileKey(p.UserID), raw, r.ttl).Err()
	})
	if err != nil {
		r.fail("set", p.UserID, err)
	}
}

// Invalidate drops userID's profile.
func (r *RedisProfileCache) Invalidate(ctx context.Context, userID string) {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return nil, r.client.Del(opCtx, profileKey(userID)).Err()
	})
	if err != nil {
		r.fail("delete", userID, err)
	}
}

// Close closes the Redis client.
func (r *RedisProfileCache) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

func (r *RedisProfileCache) fail(op, userID string, err error) {
	metrics.RecordCacheError(cacheTypeRedis, op)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	r.logger.Debug().Err(err).Str("op", op).Str("user_id", userID).Msg("profile cache operation failed")
}
