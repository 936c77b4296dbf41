// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dealrank/internal/database/query"
	"github.com/tomtom215/dealrank/internal/ranking"
)

// NeighborWeights aggregates, for every other user who touched one of
// userID's coupons, the number of shared coupons and the summed weight of
// their events on them. Strongest overlaps come first.
func (s *RankingStore) NeighborWeights(ctx context.Context, userID string, limit int) (result []ranking.NeighborWeight, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "interaction_events", start, err) }()

	q := `
		WITH ` + interactionEventsCTE + `,
		target_items AS (
			SELECT DISTINCT coupon_id FROM interaction_events WHERE user_id = ?
		)
		SELECT
			e.user_id,
			COUNT(DISTINCT e.coupon_id) AS shared_items,
			SUM(e.weight) AS combined_weight
		FROM interaction_events e
		JOIN target_items t ON t.coupon_id = e.coupon_id
		WHERE e.user_id <> ?
		GROUP BY e.user_id
		ORDER BY combined_weight DESC, shared_items DESC, e.user_id
		LIMIT ?
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var n ranking.NeighborWeight
		if err := rows.Scan(&n.UserID, &n.SharedItems, &n.CombinedWeight); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return result, nil
}

// NeighborCounts counts, per coupon, the distinct users among userIDs who
// interacted with it in any way. One statement covers the whole batch.
func (s *RankingStore) NeighborCounts(ctx context.Context, itemIDs []int64, userIDs []string) (result map[int64]int, err error) {
	result = make(map[int64]int)
	if len(itemIDs) == 0 || len(userIDs) == 0 {
		return result, nil
	}
	start := time.Now()
	defer func() { observe("select", "interaction_events", start, err) }()

	where, args := query.NewWhereBuilder().
		AddInt64s("coupon_id", itemIDs).
		AddStrings("user_id", userIDs).
		BuildWithPrefix()

	q := `
		WITH ` + interactionEventsCTE + `
		SELECT coupon_id, COUNT(DISTINCT user_id)
		FROM interaction_events
		` + where + `
		GROUP BY coupon_id
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query neighbor counts: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan neighbor count: %w", err)
		}
		result[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbor counts: %w", err)
	}
	return result, nil
}

// InteractionTotals sums the kind weights of every event on each coupon.
// Coupons with no events are absent from the result.
func (s *RankingStore) InteractionTotals(ctx context.Context, itemIDs []int64) (result map[int64]float64, err error) {
	result = make(map[int64]float64)
	if len(itemIDs) == 0 {
		return result, nil
	}
	start := time.Now()
	defer func() { observe("select", "interaction_events", start, err) }()

	where, args := query.NewWhereBuilder().
		AddInt64s("coupon_id", itemIDs).
		BuildWithPrefix()

	q := `
		WITH ` + interactionEventsCTE + `
		SELECT coupon_id, SUM(weight)
		FROM interaction_events
		` + where + `
		GROUP BY coupon_id
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query interaction totals: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			id    int64
			total float64
		)
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan interaction total: %w", err)
		}
		result[id] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction totals: %w", err)
	}
	return result, nil
}
