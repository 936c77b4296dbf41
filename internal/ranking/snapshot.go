// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"fmt"
	"time"
)

// RecomputeAndStore ranks the user's top SnapshotSize coupons and replaces
// their snapshot in one transaction. An empty ranking leaves the previous
// snapshot untouched and reports a count of zero.
func (e *Engine) RecomputeAndStore(ctx context.Context, userID string) (RecomputeResult, error) {
	if userID == "" {
		return RecomputeResult{}, ErrInvalidUser
	}
	start := time.Now()
	e.recomputes.Add(1)

	scored, err := e.Generate(ctx, userID, GenerateOptions{
		Limit:             e.config.SnapshotSize,
		UseCategoryFilter: true,
	})
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("generate snapshot for %s: %w", userID, err)
	}

	if len(scored) > 0 {
		entries := make([]SnapshotEntry, len(scored))
		for i := range scored {
			entries[i] = SnapshotEntry{ItemID: scored[i].ID, Score: scored[i].FinalScore}
		}
		if err := e.store.ReplaceSnapshot(ctx, userID, entries); err != nil {
			e.failures.Add(1)
			return RecomputeResult{}, fmt.Errorf("store snapshot for %s: %w", userID, err)
		}
	}

	elapsed := time.Since(start)
	e.logger.Debug().
		Str("user_id", userID).
		Int("count", len(scored)).
		Dur("duration", elapsed).
		Msg("snapshot recomputed")

	return RecomputeResult{
		UserID:     userID,
		Count:      len(scored),
		Duration:   elapsed,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// UserIDs lists every user known to the store.
func (e *Engine) UserIDs(ctx context.Context) ([]string, error) {
	ids, err := e.store.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}
