// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"math"
)

// PopularityScore saturates a weighted event total at divisor.
func PopularityScore(weightedTotal, divisor float64) float64 {
	if weightedTotal <= 0 || divisor <= 0 {
		return 0
	}
	return math.Min(1, weightedTotal/divisor)
}

// popularityScores returns scores for items with any activity. Items absent
// from the map score 0. A store failure yields an empty map.
func (e *Engine) popularityScores(ctx context.Context, itemIDs []int64) (map[int64]float64, error) {
	if len(itemIDs) == 0 {
		return map[int64]float64{}, nil
	}
	totals, err := e.store.InteractionTotals(ctx, itemIDs)
	if err != nil {
		if IsCanceled(err) || ctx.Err() != nil {
			return nil, err
		}
		e.degraded.Add(1)
		e.logger.Warn().Err(err).Int("candidates", len(itemIDs)).Msg("popularity scoring failed, using zeros")
		return map[int64]float64{}, nil
	}

	scores := make(map[int64]float64, len(totals))
	for id, total := range totals {
		scores[id] = PopularityScore(total, e.config.PopularityDivisor)
	}
	return scores, nil
}
