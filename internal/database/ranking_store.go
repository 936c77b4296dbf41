// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/dealrank/internal/logging"
	"github.com/tomtom215/dealrank/internal/metrics"
	"github.com/tomtom215/dealrank/internal/ranking"
)

// RankingStore implements ranking.Store on DuckDB.
type RankingStore struct {
	db *DB
}

var _ ranking.Store = (*RankingStore)(nil)

// NewRankingStore wraps db for the ranking engine.
func NewRankingStore(db *DB) *RankingStore {
	return &RankingStore{db: db}
}

// interactionEventsCTE unifies the four feedback tables into
// (user_id, coupon_id, kind, weight). Weights come from ranking so SQL
// aggregates and in-memory profiles always agree.
var interactionEventsCTE = fmt.Sprintf(`interaction_events AS (
		SELECT user_id, coupon_id, '%s' AS kind, CAST(%g AS DOUBLE) AS weight FROM coupon_clicks
		UNION ALL
		SELECT user_id, coupon_id, '%s', CAST(%g AS DOUBLE) FROM saves
		UNION ALL
		SELECT buyer_id, coupon_id, '%s', CAST(%g AS DOUBLE) FROM conversations
		WHERE NOT COALESCE(is_deleted, FALSE)
		UNION ALL
		SELECT buyer_id, coupon_id, '%s', CAST(%g AS DOUBLE) FROM transactions
	)`,
	ranking.KindClick, ranking.KindClick.Weight(),
	ranking.KindSave, ranking.KindSave.Weight(),
	ranking.KindConversation, ranking.KindConversation.Weight(),
	ranking.KindPurchase, ranking.KindPurchase.Weight(),
)

// shopCategoriesCTE collects each shop's category names.
const shopCategoriesCTE = `shop_categories AS (
		SELECT sc.shop_id, list(cat.name ORDER BY cat.name) AS names
		FROM shops_categories sc
		JOIN categories cat ON cat.id = sc.category_id
		GROUP BY sc.shop_id
	)`

// userSavesCTE takes one argument: the requesting user.
const userSavesCTE = `user_saves AS (
		SELECT DISTINCT coupon_id FROM saves WHERE user_id = ?
	)`

// eligibleClause selects live coupons.
const eligibleClause = `c.is_active
		AND NOT COALESCE(c.is_deleted, FALSE)
		AND (c.expiry_date IS NULL OR c.expiry_date >= current_date)`

// candidateColumns must stay in step with scanCandidate.
const candidateColumns = `
		c.id,
		c.code,
		COALESCE(c.description, ''),
		COALESCE(c.price, 0),
		COALESCE(c.discount, 0),
		COALESCE(c.is_discount_percentage, FALSE),
		COALESCE(c.works_online, FALSE),
		COALESCE(c.works_in_store, FALSE),
		c.expiry_date,
		c.shop_id,
		sh.name,
		u.id,
		COALESCE(u.username, ''),
		u.reputation,
		scs.names,
		c.created_at,
		us.coupon_id IS NOT NULL AS is_saved`

// candidateJoins attaches seller, shop, categories and saved state.
const candidateJoins = `
		FROM coupons c
		JOIN users u ON u.id = c.seller_id
		LEFT JOIN shops sh ON sh.id = c.shop_id
		LEFT JOIN shop_categories scs ON scs.shop_id = c.shop_id
		LEFT JOIN user_saves us ON us.coupon_id = c.id`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCandidate reads candidateColumns followed by any extra destinations.
func scanCandidate(row rowScanner, extra ...any) (ranking.Candidate, error) {
	var (
		c          ranking.Candidate
		expiry     sql.NullTime
		shopID     sql.NullInt64
		shopName   sql.NullString
		reputation sql.NullFloat64
		names      any
	)
	dest := []any{
		&c.ID, &c.Code, &c.Description, &c.Price, &c.Discount,
		&c.IsDiscountPercentage, &c.WorksOnline, &c.WorksInStore,
		&expiry, &shopID, &shopName,
		&c.SellerID, &c.SellerUsername, &reputation,
		&names, &c.CreatedAt, &c.IsSaved,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return c, err
	}

	if expiry.Valid {
		t := expiry.Time
		c.ExpiryDate = &t
	}
	if shopID.Valid {
		id := shopID.Int64
		c.ShopID = &id
	}
	c.ShopName = shopName.String
	if reputation.Valid {
		r := reputation.Float64
		c.SellerReputation = &r
	}
	c.Categories = toStrings(names)
	return c, nil
}

// toStrings converts a scanned DuckDB LIST of VARCHAR to []string.
func toStrings(v any) []string {
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return list
	default:
		return []string{}
	}
}

// observe records query latency and flags lost connections.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
	if isConnectionError(err) {
		logging.Error().Err(err).Str("operation", operation).Msg("DuckDB connection lost")
	}
}
