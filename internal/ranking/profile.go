// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"math"
	"sort"
	"time"
)

// maxPreferredCategories caps the category list of a profile.
const maxPreferredCategories = 10

// Channel preference labels.
const (
	ChannelOnline  = "online"
	ChannelInStore = "in-store"
	ChannelBoth    = "both"
)

// Profile is a user's derived taste. It is built fresh from interactions,
// never persisted, and must not be mutated after construction.
type Profile struct {
	UserID              string             `json:"userId"`
	PreferenceStrength  float64            `json:"preferenceStrength"`
	PriceRange          *PriceRange        `json:"priceRange"`
	PreferredCategories []CategoryWeight   `json:"preferredCategories"`
	Channel             *ChannelPreference `json:"shoppingChannelPreference"`
	AvgSellerReputation *float64           `json:"averageSellerReputation"`
	InteractionCount    int                `json:"interactionCount"`
	TotalWeightedScore  float64            `json:"totalWeightedScore"`
	LastUpdated         time.Time          `json:"lastUpdated"`
}

// PriceRange carries the weighted mean price. Min and Max are reserved and
// always nil.
type PriceRange struct {
	Preferred float64  `json:"preferred"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
}

// CategoryWeight is a preferred category and its normalized frequency.
type CategoryWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ChannelPreference splits weighted interest between online and in-store
// redemption.
type ChannelPreference struct {
	Online    float64 `json:"online"`
	InStore   float64 `json:"inStore"`
	Preferred string  `json:"preferred"`
}

// NeutralProfile is the profile of a user with no interactions.
func NeutralProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:              userID,
		PreferredCategories: []CategoryWeight{},
		LastUpdated:         now,
	}
}

// HasCategories reports whether the profile names any preferred category.
func (p *Profile) HasCategories() bool {
	return p != nil && len(p.PreferredCategories) > 0
}

// CategoryNames returns a fresh slice of the preferred category names.
func (p *Profile) CategoryNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.PreferredCategories))
	for i, c := range p.PreferredCategories {
		names[i] = c.Name
	}
	return names
}

// BuildProfile derives a profile from a user's interactions and the shop
// categories of the items they touched. It performs no I/O.
//
// Weight accumulates per event, so clicking an item three times counts three
// times. Category frequency counts each distinct item once per category.
func BuildProfile(userID string, interactions []Interaction, categories map[int64][]string, now time.Time) *Profile {
	var (
		totalWeight    float64
		priceSum       float64
		priceWeight    float64
		onlineWeight   float64
		inStoreWeight  float64
		reputationSum  float64
		reputationSeen float64
	)
	items := make(map[int64]struct{})

	for _, in := range interactions {
		w := in.Kind.Weight()
		if w <= 0 {
			continue
		}
		totalWeight += w
		items[in.ItemID] = struct{}{}

		if in.Price > 0 {
			priceSum += in.Price * w
			priceWeight += w
		}
		if in.WorksOnline {
			onlineWeight += w
		}
		if in.WorksInStore {
			inStoreWeight += w
		}
		if in.SellerReputation != nil {
			reputationSum += *in.SellerReputation * w
			reputationSeen += w
		}
	}

	if len(items) == 0 {
		return NeutralProfile(userID, now)
	}

	p := &Profile{
		UserID:             userID,
		PreferenceStrength: roundTo(totalWeight/math.Max(1, float64(len(items))), 2),
		InteractionCount:   len(items),
		TotalWeightedScore: totalWeight,
		LastUpdated:        now,
	}

	if priceWeight > 0 {
		if preferred := priceSum / priceWeight; preferred > 0 {
			p.PriceRange = &PriceRange{Preferred: roundTo(preferred, 2)}
		}
	}

	if channelTotal := onlineWeight + inStoreWeight; channelTotal > 0 {
		pref := ChannelBoth
		switch {
		case onlineWeight > inStoreWeight:
			pref = ChannelOnline
		case inStoreWeight > onlineWeight:
			pref = ChannelInStore
		}
		p.Channel = &ChannelPreference{
			Online:    roundTo(onlineWeight/channelTotal, 3),
			InStore:   roundTo(inStoreWeight/channelTotal, 3),
			Preferred: pref,
		}
	}

	if reputationSeen > 0 {
		avg := roundTo(reputationSum/reputationSeen, 1)
		p.AvgSellerReputation = &avg
	}

	p.PreferredCategories = rankCategories(items, categories, totalWeight)
	return p
}

// rankCategories counts category occurrences across distinct items and keeps
// the most frequent. Ties are broken by name so output is deterministic.
func rankCategories(items map[int64]struct{}, categories map[int64][]string, totalWeight float64) []CategoryWeight {
	freq := make(map[string]int)
	for id := range items {
		seen := make(map[string]struct{}, len(categories[id]))
		for _, name := range categories[id] {
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			freq[name]++
		}
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for name, n := range freq {
		entries = append(entries, entry{name, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > maxPreferredCategories {
		entries = entries[:maxPreferredCategories]
	}

	out := make([]CategoryWeight, len(entries))
	denom := math.Max(1, totalWeight)
	for i, e := range entries {
		out[i] = CategoryWeight{Name: e.name, Weight: roundTo(float64(e.count)/denom, 3)}
	}
	return out
}

// CompareProfiles scores how alike two profiles are, in [0,1].
//
// Category overlap contributes half, channel agreement a quarter and price
// proximity a quarter. Profiles without categories are never similar.
func CompareProfiles(a, b *Profile) float64 {
	if !a.HasCategories() || !b.HasCategories() {
		return 0
	}

	score := 0.5 * Jaccard(a.CategoryNames(), b.CategoryNames())

	if a.Channel != nil && b.Channel != nil {
		score += 0.25 * (1 - math.Abs(a.Channel.Online-b.Channel.Online))
	}

	if a.PriceRange != nil && b.PriceRange != nil {
		pa, pb := a.PriceRange.Preferred, b.PriceRange.Preferred
		if hi := math.Max(pa, pb); hi > 0 {
			score += 0.25 * (1 - math.Min(1, math.Abs(pa-pb)/hi))
		}
	}

	return roundTo(score, 3)
}
