// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"math"
	"time"
)

// InteractionKind classifies an implicit feedback event.
type InteractionKind string

// Interaction kinds, ordered by intent strength.
const (
	KindClick        InteractionKind = "click"
	KindSave         InteractionKind = "save"
	KindConversation InteractionKind = "conversation"
	KindPurchase     InteractionKind = "purchase"
)

// Weight returns the contribution of one event of this kind.
// Unknown kinds weigh nothing.
func (k InteractionKind) Weight() float64 {
	switch k {
	case KindClick:
		return 1
	case KindSave:
		return 2
	case KindConversation:
		return 3
	case KindPurchase:
		return 5
	default:
		return 0
	}
}

// Interaction is a single feedback event joined with the attributes of the
// coupon it touched. Events on deleted coupons and deleted conversations are
// filtered by the store before they reach the profile builder.
type Interaction struct {
	ItemID           int64
	Kind             InteractionKind
	Price            float64
	WorksOnline      bool
	WorksInStore     bool
	SellerReputation *float64
}

// Candidate is an eligible coupon as read from the catalog.
type Candidate struct {
	ID                   int64      `json:"id"`
	Code                 string     `json:"code"`
	Description          string     `json:"description"`
	Price                float64    `json:"price"`
	Discount             float64    `json:"discount"`
	IsDiscountPercentage bool       `json:"is_discount_percentage"`
	WorksOnline          bool       `json:"works_online"`
	WorksInStore         bool       `json:"works_in_store"`
	ExpiryDate           *time.Time `json:"expiry_date"`
	ShopID               *int64     `json:"shop_id"`
	ShopName             string     `json:"shop_name,omitempty"`
	SellerID             string     `json:"seller_id"`
	SellerUsername       string     `json:"seller_username"`
	SellerReputation     *float64   `json:"seller_reputation"`
	Categories           []string   `json:"categories"`
	CreatedAt            time.Time  `json:"listing_date"`
	IsSaved              bool       `json:"is_saved"`
}

// Scores holds the sub-scores and blended score of a candidate, each
// rounded to three decimals.
type Scores struct {
	ContentBased     float64 `json:"contentBased"`
	Collaborative    float64 `json:"collaborative"`
	SellerReputation float64 `json:"sellerReputation"`
	Popularity       float64 `json:"popularity"`
	Final            float64 `json:"final"`
}

// ScoredCandidate is a candidate with its ranking scores attached.
type ScoredCandidate struct {
	Candidate
	Scores     Scores  `json:"scores"`
	FinalScore float64 `json:"finalScore"`
}

// QuickRecommendation is the lightweight projection of a ScoredCandidate.
type QuickRecommendation struct {
	ID         int64   `json:"id"`
	Code       string  `json:"code"`
	FinalScore float64 `json:"finalScore"`
	Discount   float64 `json:"discount"`
	Price      float64 `json:"price"`
}

// NeighborWeight is the raw overlap between the requester and another user,
// as aggregated by the store.
type NeighborWeight struct {
	UserID         string
	SharedItems    int
	CombinedWeight float64
}

// Neighbor is a user with similar taste and a normalized similarity score.
type Neighbor struct {
	UserID      string  `json:"userId"`
	Similarity  float64 `json:"similarityScore"`
	SharedItems int     `json:"sharedItemCount"`
}

// CandidateQuery selects the candidate strategy. An empty Categories slice
// means the unconstrained strategy ordered by recency.
type CandidateQuery struct {
	Categories []string
	Limit      int
}

// SnapshotEntry is one row of a user's precomputed ranking.
type SnapshotEntry struct {
	ItemID int64
	Score  float64
}

// FeedRow is a catalog row joined with the user's snapshot score.
type FeedRow struct {
	Candidate
	Score float64
}

// FeedItem is a feed entry after live signals are applied.
type FeedItem struct {
	Candidate
	Score      float64 `json:"recommendation_score"`
	WasClicked bool    `json:"was_clicked"`
}

// FeedPage is one page of a user's feed.
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor string     `json:"nextCursor"`
	HasMore    bool       `json:"hasMore"`
	Limit      int        `json:"limit"`
}

// RecomputeResult reports a snapshot recompute.
type RecomputeResult struct {
	UserID     string        `json:"userId"`
	Count      int           `json:"count"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"durationMs"`
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
