// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dealrank/internal/ranking"
)

// FeedRows returns a page of every eligible coupon joined with the user's
// snapshot score (0 when absent). Single-use coupons that already sold are
// hidden. Ties fall back to recency so pages are stable between calls.
func (s *RankingStore) FeedRows(ctx context.Context, userID string, limit, offset int) (result []ranking.FeedRow, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		return []ranking.FeedRow{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	start := time.Now()
	defer func() { observe("select", "user_recommendations", start, err) }()

	q := `
		WITH ` + shopCategoriesCTE + `,
		` + userSavesCTE + `
		SELECT` + candidateColumns + `,
		COALESCE(r.score, 0) AS snapshot_score` + candidateJoins + `
		LEFT JOIN user_recommendations r ON r.coupon_id = c.id AND r.user_id = ?
		WHERE ` + eligibleClause + `
		  AND (COALESCE(c.is_multiple_use, FALSE)
		       OR NOT EXISTS (SELECT 1 FROM transactions t WHERE t.coupon_id = c.id))
		ORDER BY snapshot_score DESC, c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, userID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result = make([]ranking.FeedRow, 0, limit)
	for rows.Next() {
		var score float64
		c, err := scanCandidate(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		result = append(result, ranking.FeedRow{Candidate: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed: %w", err)
	}
	return result, nil
}
