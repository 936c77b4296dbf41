// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package api provides the HTTP layer over the ranking engine.

Routes (all under /api/v1 except /metrics):

	GET  /health                       database ping and engine counters
	GET  /recommendations              quick or detailed ranking (?limit=&detail=)
	GET  /recommendations/full         ranking with every sub-score
	GET  /recommendations/profile      the caller's preference profile
	GET  /recommendations/compare      profile similarity (?other_user_id=)
	POST /recommendations/compute      rebuild the stored snapshot
	GET  /feed                         cursor-paginated feed (?limit=&cursor=)
	GET  /metrics                      Prometheus exposition

Every endpoint except health and metrics requires authentication. The
optional user_id parameter selects another user; the Casbin policy allows
that only for administrators.

Responses use a single envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "..."}}

Middleware order: request ID, real IP, panic recovery, CORS, then per-group
Prometheus metrics, rate limiting (go-chi/httprate), authentication and
authorization.
*/
package api
