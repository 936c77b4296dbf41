// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry at init via promauto and
exposed at /metrics by the API router.

# Available Metrics

Database:
  - duckdb_query_duration_seconds (histogram; operation, table)
  - duckdb_query_errors_total (counter; operation, table, error_type)

API:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - api_rate_limit_hits_total

Ranking:
  - ranking_generate_duration_seconds (histogram; mode)
  - ranking_candidates_returned, ranking_snapshot_entries
  - ranking_snapshot_recomputes_total (counter; result)
  - ranking_feed_pages_total
  - ranking_sweep_duration_seconds, ranking_sweep_users_total,
    ranking_sweep_last_success_timestamp_seconds

Cache and resilience:
  - cache_hits_total, cache_misses_total, cache_errors_total
  - circuit_breaker_state, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	rows, err := conn.QueryContext(ctx, q)
	metrics.RecordDBQuery("select", "coupons", time.Since(start), err)

Error messages used as labels are truncated to 50 characters to keep
cardinality bounded.
*/
package metrics
