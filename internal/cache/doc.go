// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package cache provides the read-through profile caches used by the ranking
engine.

Two implementations satisfy ranking.ProfileCache:

  - MemoryProfileCache: a per-process LRU with TTL. Used when Redis is not
    configured.
  - RedisProfileCache: profiles JSON-encoded in Redis under
    "dealrank:profile:<userID>", guarded by a circuit breaker so an
    unavailable Redis degrades to cache misses instead of slow requests.

Neither cache ever returns an error to its caller. Backend failures count as
misses and are recorded in the cache_errors_total metric.

# Usage

	pc, err := cache.NewProfileCache(ctx, &cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer pc.Close()
	engine.SetProfileCache(pc)
*/
package cache
