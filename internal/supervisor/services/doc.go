// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package services provides suture.Service wrappers for Dealrank components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error and names itself through fmt.Stringer for supervisor logs.

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine and
cancellation triggers Shutdown with a separate timeout.

SweepService recomputes every user's stored ranking on a robfig/cron
schedule (default "0 2,8,14,20 * * *"), optionally once at startup:

  - users are read from the engine and recomputed by an errgroup bounded by
    Workers
  - starts are paced by an x/time/rate limiter when RatePerSec > 0
  - each user gets its own Timeout
  - a failed user is logged and counted, never fatal to the sweep
  - overlapping sweeps are rejected with ErrSweepRunning

Completed sweeps update ranking_sweep_duration_seconds,
ranking_sweep_users_total and ranking_sweep_last_success_timestamp_seconds.
*/
package services
