// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package main is the entry point for the Dealrank server.

Dealrank ranks marketplace coupons for each user from their clicks, saves,
conversations and purchases. It blends a content match against the user's
preference profile with collaborative, seller-reputation and popularity
signals, stores a per-user snapshot, and serves a paginated feed from it.

# Process layout

	dealrank
	├── ranking-layer
	│   └── snapshot sweep (cron, optional)
	└── api-layer
	    └── HTTP server

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Database: DuckDB with the marketplace schema
 4. Ranking engine over the DuckDB store
 5. Profile cache: Redis with a circuit breaker, or in-process LRU
 6. Authentication (JWT or none) and Casbin authorization
 7. HTTP router and supervisor tree

# Configuration

Common environment variables:

	DUCKDB_PATH         database file (default /data/dealrank.duckdb)
	HTTP_PORT           listen port (default 8080)
	AUTH_MODE           jwt (default) or none
	JWT_SECRET          shared HS256 secret, 32+ characters
	SWEEP_ENABLED       run the scheduled snapshot sweep
	SWEEP_SCHEDULE      cron spec (default "0 2,8,14,20 * * *")
	PROFILE_CACHE_ENABLED, REDIS_ADDR
	LOG_LEVEL, LOG_FORMAT

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, an in-flight sweep stops starting new users, and the
database closes last.

# Example

	export AUTH_MODE=none
	export SWEEP_ENABLED=true SWEEP_RUN_ON_STARTUP=true
	./dealrank
	curl 'localhost:8080/api/v1/recommendations?user_id=u1&limit=10&detail=detailed'
*/
package main
