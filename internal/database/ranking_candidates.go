// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/dealrank/internal/database/query"
	"github.com/tomtom215/dealrank/internal/ranking"
)

// defaultCandidateLimit applies when the query carries no limit.
const defaultCandidateLimit = 1000

// Candidates returns eligible coupons for userID: live, not listed by the
// user, and never clicked, saved, discussed or bought by them.
//
// With q.Categories set, only coupons whose shop carries one of those
// categories (or carries none at all) qualify, ordered by how many categories
// match and then by recency. Otherwise the newest coupons are returned.
func (s *RankingStore) Candidates(ctx context.Context, userID string, q ranking.CandidateQuery) (result []ranking.Candidate, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "coupons", start, err) }()

	limit := q.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	matched := len(q.Categories) > 0

	var (
		sb   strings.Builder
		args []any
	)

	// CTE arguments bind before anything in the main SELECT.
	sb.WriteString("WITH " + interactionEventsCTE + ",\n" + shopCategoriesCTE + ",\n" + userSavesCTE)
	args = append(args, userID)
	if matched {
		sb.WriteString(`,
	shop_matches AS (
		SELECT sc.shop_id, COUNT(*) AS match_count
		FROM shops_categories sc
		JOIN categories cat ON cat.id = sc.category_id
		WHERE cat.name IN (` + query.Placeholders(len(q.Categories)) + `)
		GROUP BY sc.shop_id
	)`)
		for _, name := range q.Categories {
			args = append(args, name)
		}
	}

	sb.WriteString("\nSELECT" + candidateColumns + candidateJoins)
	if matched {
		sb.WriteString("\n\t\tLEFT JOIN shop_matches sm ON sm.shop_id = c.shop_id")
	}

	wb := query.NewWhereBuilder().
		AddClause(eligibleClause).
		AddClause("c.seller_id <> ?", userID).
		AddClause("c.id NOT IN (SELECT coupon_id FROM interaction_events WHERE user_id = ?)", userID)
	if matched {
		wb.AddClause("(sm.match_count > 0 OR scs.shop_id IS NULL)")
	}
	where, whereArgs := wb.BuildWithPrefix()
	sb.WriteString("\n\t\t" + where)
	args = append(args, whereArgs...)

	if matched {
		sb.WriteString("\n\t\tORDER BY COALESCE(sm.match_count, 0) DESC, c.created_at DESC, c.id DESC")
	} else {
		sb.WriteString("\n\t\tORDER BY c.created_at DESC, c.id DESC")
	}
	sb.WriteString("\n\t\tLIMIT ?")
	args = append(args, limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result = make([]ranking.Candidate, 0, limit)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return result, nil
}
