// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import "math"

// Content component weights. Only components with data participate, and the
// result is normalized by the weights that did.
const (
	contentPriceWeight      = 0.35
	contentCategoryWeight   = 0.35
	contentChannelWeight    = 0.15
	contentReputationWeight = 0.15
)

// ContentScore measures how well a candidate fits a profile, in [0,1].
// It returns 0 when no component can be evaluated.
func ContentScore(c *Candidate, p *Profile) float64 {
	var score, weight float64

	if p.PriceRange != nil && p.PriceRange.Preferred > 0 {
		score += PriceProximity(c.Price, p.PriceRange.Preferred) * contentPriceWeight
		weight += contentPriceWeight
	}

	if p.HasCategories() && len(c.Categories) > 0 {
		score += Jaccard(p.CategoryNames(), c.Categories) * contentCategoryWeight
		weight += contentCategoryWeight
	}

	if p.Channel != nil {
		score += channelFit(c, p.Channel) * contentChannelWeight
		weight += contentChannelWeight
	}

	if c.SellerReputation != nil {
		score += ReputationScore(c.SellerReputation) * contentReputationWeight
		weight += contentReputationWeight
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

// PriceProximity is 1 at equal prices and falls linearly with the relative
// gap, floored at 0.
func PriceProximity(candidate, preferred float64) float64 {
	denom := math.Max(math.Max(candidate, preferred), 1)
	return math.Max(0, 1-math.Abs(candidate-preferred)/denom)
}

// Jaccard is |A∩B| / |A∪B| over the distinct members of a and b.
// Two empty sets have similarity 0.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	union := len(setA)
	inter := 0
	seenB := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seenB[s]; dup {
			continue
		}
		seenB[s] = struct{}{}
		if _, ok := setA[s]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ReputationScore maps a seller reputation onto [0,1]. Unknown is 0.
func ReputationScore(rep *float64) float64 {
	if rep == nil {
		return 0
	}
	return math.Max(0, math.Min(1, *rep/100))
}

func channelFit(c *Candidate, pref *ChannelPreference) float64 {
	switch {
	case c.WorksOnline && c.WorksInStore:
		return 1
	case c.WorksOnline:
		return pref.Online
	case c.WorksInStore:
		return pref.InStore
	default:
		return 0
	}
}
