// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"fmt"
	"math"
)

// Config tunes the engine. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// CandidateLimit caps each candidate query.
	CandidateLimit int `json:"candidate_limit"`

	// NeighborLimit caps the neighbors kept per user.
	NeighborLimit int `json:"neighbor_limit"`

	// MinSimilarity drops neighbors below this normalized score.
	MinSimilarity float64 `json:"min_similarity"`

	// PopularityDivisor is the weighted event total that saturates popularity.
	PopularityDivisor float64 `json:"popularity_divisor"`

	// SnapshotSize is how many entries a recompute stores.
	SnapshotSize int `json:"snapshot_size"`

	// FeedDefaultLimit applies when the feed is asked for zero items.
	FeedDefaultLimit int `json:"feed_default_limit"`

	Weights Weights `json:"weights"`
}

// Weights blend the sub-scores. They must sum to 1.
type Weights struct {
	Content          float64 `json:"content"`
	Collaborative    float64 `json:"collaborative"`
	SellerReputation float64 `json:"seller_reputation"`
	Popularity       float64 `json:"popularity"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() *Config {
	return &Config{
		CandidateLimit:    1000,
		NeighborLimit:     50,
		MinSimilarity:     0.1,
		PopularityDivisor: 500,
		SnapshotSize:      100,
		FeedDefaultLimit:  20,
		Weights: Weights{
			Content:          0.45,
			Collaborative:    0.30,
			SellerReputation: 0.15,
			Popularity:       0.10,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.CandidateLimit <= 0 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	if c.NeighborLimit <= 0 {
		return fmt.Errorf("neighbor_limit must be positive, got %d", c.NeighborLimit)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be in [0,1], got %v", c.MinSimilarity)
	}
	if c.PopularityDivisor <= 0 {
		return fmt.Errorf("popularity_divisor must be positive, got %v", c.PopularityDivisor)
	}
	if c.SnapshotSize <= 0 {
		return fmt.Errorf("snapshot_size must be positive, got %d", c.SnapshotSize)
	}
	if c.FeedDefaultLimit <= 0 {
		return fmt.Errorf("feed_default_limit must be positive, got %d", c.FeedDefaultLimit)
	}
	w := c.Weights
	if w.Content < 0 || w.Collaborative < 0 || w.SellerReputation < 0 || w.Popularity < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if sum := w.Content + w.Collaborative + w.SellerReputation + w.Popularity; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	return nil
}
