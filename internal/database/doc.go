// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package database provides DuckDB persistence for Dealrank.

The marketplace catalog (users, shops, categories, coupons) and the four
interaction tables are owned by the surrounding marketplace; this package
only reads them. The single table it writes is user_recommendations, the
per-user ranking snapshot.

# Ranking Store

RankingStore implements ranking.Store. Every scorer input is fetched in one
batched statement per request: a thousand candidates cost one popularity
query and one collaborative query, never one per candidate. The four
interaction tables are unified by the interaction_events CTE, which also
drops conversations flagged deleted.

# Snapshots

ReplaceSnapshot deletes and re-inserts a user's rows inside one transaction.
DuckDB uses optimistic concurrency, so two recomputes for the same user can
conflict; the loser retries with a short exponential backoff and the last
commit wins.

# Testing

Tests run against an in-memory DuckDB instance created by setupTestDB, which
serializes database tests with a semaphore to keep CGO contention low.
*/
package database
