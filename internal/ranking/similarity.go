// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"math"
	"sort"
)

// NormalizeNeighbors scales raw overlaps by the strongest one and drops
// neighbors below minSimilarity. The input is re-sorted so the strongest
// neighbor comes first and scores exactly 1.
func NormalizeNeighbors(raw []NeighborWeight, minSimilarity float64) []Neighbor {
	if len(raw) == 0 {
		return nil
	}
	sorted := make([]NeighborWeight, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CombinedWeight > sorted[j].CombinedWeight
	})

	maxWeight := sorted[0].CombinedWeight
	if maxWeight <= 0 {
		maxWeight = 1
	}

	out := make([]Neighbor, 0, len(sorted))
	for _, n := range sorted {
		sim := math.Min(1, n.CombinedWeight/maxWeight)
		if sim < minSimilarity {
			continue
		}
		out = append(out, Neighbor{UserID: n.UserID, Similarity: sim, SharedItems: n.SharedItems})
	}
	return out
}

// FindNeighbors returns the users whose interactions overlap most with
// userID. A store failure degrades to no neighbors unless the context ended.
func (e *Engine) FindNeighbors(ctx context.Context, userID string) ([]Neighbor, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	raw, err := e.store.NeighborWeights(ctx, userID, e.config.NeighborLimit)
	if err != nil {
		if IsCanceled(err) || ctx.Err() != nil {
			return nil, err
		}
		e.degraded.Add(1)
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("neighbor lookup failed, continuing without neighbors")
		return nil, nil
	}
	if len(raw) > e.config.NeighborLimit {
		raw = raw[:e.config.NeighborLimit]
	}
	return NormalizeNeighbors(raw, e.config.MinSimilarity), nil
}

// collaborativeScores maps each candidate to the share of neighbors who
// interacted with it. Every candidate is present in the result.
func (e *Engine) collaborativeScores(ctx context.Context, itemIDs []int64, neighbors []Neighbor) (map[int64]float64, error) {
	scores := make(map[int64]float64, len(itemIDs))
	for _, id := range itemIDs {
		scores[id] = 0
	}
	if len(neighbors) == 0 || len(itemIDs) == 0 {
		return scores, nil
	}

	userIDs := make([]string, len(neighbors))
	for i, n := range neighbors {
		userIDs[i] = n.UserID
	}

	counts, err := e.store.NeighborCounts(ctx, itemIDs, userIDs)
	if err != nil {
		if IsCanceled(err) || ctx.Err() != nil {
			return nil, err
		}
		e.degraded.Add(1)
		e.logger.Warn().Err(err).Int("candidates", len(itemIDs)).Msg("collaborative scoring failed, using zeros")
		return scores, nil
	}

	total := float64(len(neighbors))
	for id, n := range counts {
		if _, ok := scores[id]; ok {
			scores[id] = math.Min(1, float64(n)/total)
		}
	}
	return scores, nil
}
