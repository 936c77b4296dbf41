// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import "context"

// The store interfaces keep this package free of database imports. The
// database package implements all of them on a single type.

// InteractionSource supplies the events a profile is built from.
type InteractionSource interface {
	// UserInteractions returns one row per event on a non-deleted coupon.
	UserInteractions(ctx context.Context, userID string) ([]Interaction, error)

	// ItemCategories returns the shop category names of each coupon.
	// Coupons without categories are absent from the map.
	ItemCategories(ctx context.Context, itemIDs []int64) (map[int64][]string, error)
}

// CandidateSource selects eligible coupons for a user.
type CandidateSource interface {
	Candidates(ctx context.Context, userID string, q CandidateQuery) ([]Candidate, error)

	// PurchasedItems returns every coupon the user has bought.
	PurchasedItems(ctx context.Context, userID string) (map[int64]struct{}, error)
}

// SignalSource supplies the batched collaborative and popularity inputs.
type SignalSource interface {
	// NeighborWeights returns up to limit users sharing items with userID,
	// ordered by combined weight descending.
	NeighborWeights(ctx context.Context, userID string, limit int) ([]NeighborWeight, error)

	// NeighborCounts returns, per item, how many of the given users
	// interacted with it in any way.
	NeighborCounts(ctx context.Context, itemIDs []int64, userIDs []string) (map[int64]int, error)

	// InteractionTotals returns the kind-weighted event total per item.
	InteractionTotals(ctx context.Context, itemIDs []int64) (map[int64]float64, error)
}

// SnapshotStore persists precomputed rankings and serves the feed scan.
type SnapshotStore interface {
	// ReplaceSnapshot atomically swaps the user's snapshot for entries.
	ReplaceSnapshot(ctx context.Context, userID string, entries []SnapshotEntry) error

	// FeedRows returns one page of eligible coupons joined with the user's
	// snapshot score, ordered by score descending.
	FeedRows(ctx context.Context, userID string, limit, offset int) ([]FeedRow, error)

	// ClickCounts returns how often the user clicked each coupon.
	ClickCounts(ctx context.Context, userID string) (map[int64]int, error)

	// UserIDs lists every user, for fleet recomputes.
	UserIDs(ctx context.Context) ([]string, error)
}

// Store is everything the engine needs from persistence.
type Store interface {
	InteractionSource
	CandidateSource
	SignalSource
	SnapshotStore
}

// ProfileCache is an optional read-through cache for built profiles.
// Implementations must treat failures as misses.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (*Profile, bool)
	SetProfile(ctx context.Context, p *Profile)
}
