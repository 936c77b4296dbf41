// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sort"

	"github.com/goccy/go-json"
)

const (
	clickBoostStep = 0.1
	clickBoostCap  = 0.3
)

type feedCursor struct {
	Offset int `json:"offset"`
}

// EncodeCursor returns the opaque cursor for offset.
func EncodeCursor(offset int) string {
	b, err := json.Marshal(feedCursor{Offset: offset})
	if err != nil {
		// A struct with one int field cannot fail to marshal.
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCursor returns the offset stored in cursor. Empty, malformed and
// negative cursors all decode to 0.
func DecodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		if raw, err = base64.URLEncoding.DecodeString(cursor); err != nil {
			return 0
		}
	}
	var c feedCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.Offset < 0 {
		return 0
	}
	return c.Offset
}

// ClickBoost is the score bonus for a coupon the user clicked n times.
func ClickBoost(clicks int) float64 {
	if clicks <= 0 {
		return 0
	}
	return math.Min(clickBoostCap, float64(clicks)*clickBoostStep)
}

// Feed serves one page of the user's feed from the stored snapshot.
//
// Coupons without a snapshot score still appear with score 0. Purchased
// coupons are dropped and clicked ones boosted after the page is read, so
// the next cursor advances by the unfiltered page size.
func (e *Engine) Feed(ctx context.Context, userID string, limit int, cursor string) (*FeedPage, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if limit <= 0 {
		limit = e.config.FeedDefaultLimit
	}
	offset := DecodeCursor(cursor)

	rows, err := e.store.FeedRows(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load feed rows: %w", err)
	}
	clicks, err := e.store.ClickCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load clicks: %w", err)
	}
	purchased, err := e.store.PurchasedItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	items := make([]FeedItem, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if _, bought := purchased[r.ID]; bought {
			continue
		}
		boost := ClickBoost(clicks[r.ID])
		items = append(items, FeedItem{
			Candidate:  r.Candidate,
			Score:      roundTo(r.Score+boost, 4),
			WasClicked: boost > 0,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	return &FeedPage{
		Items:      items,
		NextCursor: EncodeCursor(offset + len(rows)),
		HasMore:    len(rows) == limit,
		Limit:      limit,
	}, nil
}
