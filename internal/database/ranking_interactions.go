// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/dealrank/internal/database/query"
	"github.com/tomtom215/dealrank/internal/ranking"
)

// UserInteractions returns one row per feedback event the user produced on a
// coupon that is not deleted.
func (s *RankingStore) UserInteractions(ctx context.Context, userID string) (result []ranking.Interaction, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "interaction_events", start, err) }()

	q := `
		WITH ` + interactionEventsCTE + `
		SELECT
			e.coupon_id,
			e.kind,
			COALESCE(c.price, 0),
			COALESCE(c.works_online, FALSE),
			COALESCE(c.works_in_store, FALSE),
			u.reputation
		FROM interaction_events e
		JOIN coupons c ON c.id = e.coupon_id
		LEFT JOIN users u ON u.id = c.seller_id
		WHERE e.user_id = ?
		  AND NOT COALESCE(c.is_deleted, FALSE)
		ORDER BY e.coupon_id
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			in         ranking.Interaction
			kind       string
			reputation sql.NullFloat64
		)
		if err := rows.Scan(&in.ItemID, &kind, &in.Price, &in.WorksOnline, &in.WorksInStore, &reputation); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Kind = ranking.InteractionKind(kind)
		if reputation.Valid {
			r := reputation.Float64
			in.SellerReputation = &r
		}
		result = append(result, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return result, nil
}

// ItemCategories returns the shop category names for each non-deleted
// coupon in itemIDs.
func (s *RankingStore) ItemCategories(ctx context.Context, itemIDs []int64) (result map[int64][]string, err error) {
	result = make(map[int64][]string)
	if len(itemIDs) == 0 {
		return result, nil
	}
	start := time.Now()
	defer func() { observe("select", "shops_categories", start, err) }()

	wb := query.NewWhereBuilder().
		AddInt64s("c.id", itemIDs).
		AddClause("NOT COALESCE(c.is_deleted, FALSE)")
	where, args := wb.BuildWithPrefix()

	q := `
		SELECT c.id, cat.name
		FROM coupons c
		JOIN shops_categories sc ON sc.shop_id = c.shop_id
		JOIN categories cat ON cat.id = sc.category_id
		` + where + `
		ORDER BY c.id, cat.name
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query item categories: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		result[id] = append(result[id], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item categories: %w", err)
	}
	return result, nil
}

// PurchasedItems returns every coupon the user has bought.
func (s *RankingStore) PurchasedItems(ctx context.Context, userID string) (result map[int64]struct{}, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "transactions", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT DISTINCT coupon_id FROM transactions WHERE buyer_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result = make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		result[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return result, nil
}

// ClickCounts returns how many times the user clicked each coupon.
func (s *RankingStore) ClickCounts(ctx context.Context, userID string) (result map[int64]int, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "coupon_clicks", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT coupon_id, COUNT(*) FROM coupon_clicks WHERE user_id = ? GROUP BY coupon_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer closeWithLog(rows, "rows")

	result = make(map[int64]int)
	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan click count: %w", err)
		}
		result[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate click counts: %w", err)
	}
	return result, nil
}

// UserIDs lists every user in id order.
func (s *RankingStore) UserIDs(ctx context.Context) (result []string, err error) {
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	rows, err := s.db.conn.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return result, nil
}
