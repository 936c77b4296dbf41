// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"errors"
	"testing"
)

func TestRecomputeAndStore(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	for i := int64(1); i <= 150; i++ {
		store.recent = append(store.recent, Candidate{ID: i, SellerReputation: f64(float64(i % 100))})
	}
	e := newTestEngine(t, store)
	ctx := context.Background()

	res, err := e.RecomputeAndStore(ctx, "u1")
	if err != nil {
		t.Fatalf("RecomputeAndStore() error = %v", err)
	}
	if res.Count != 100 || res.UserID != "u1" {
		t.Errorf("result = %+v, want 100 entries for u1", res)
	}
	first := store.snapshots["u1"]
	if len(first) != 100 {
		t.Fatalf("stored %d entries, want 100", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i].Score > first[i-1].Score {
			t.Fatalf("snapshot not sorted at %d", i)
		}
	}

	// Recomputing with unchanged data stores the same snapshot.
	if _, err := e.RecomputeAndStore(ctx, "u1"); err != nil {
		t.Fatalf("second RecomputeAndStore() error = %v", err)
	}
	second := store.snapshots["u1"]
	if len(second) != len(first) {
		t.Fatalf("second snapshot size %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}
	if e.Stats().Recomputes != 2 {
		t.Errorf("Recomputes = %d, want 2", e.Stats().Recomputes)
	}
}

func TestRecomputeAndStore_EmptyKeepsSnapshot(t *testing.T) {
	t.Parallel()

	store := &mockStore{snapshots: map[string][]SnapshotEntry{"u1": {{ItemID: 9, Score: 0.4}}}}
	e := newTestEngine(t, store)

	res, err := e.RecomputeAndStore(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RecomputeAndStore() error = %v", err)
	}
	if res.Count != 0 {
		t.Errorf("Count = %d, want 0", res.Count)
	}
	if got := store.snapshots["u1"]; len(got) != 1 || got[0].ItemID != 9 {
		t.Errorf("previous snapshot was touched: %+v", got)
	}
}

func TestRecomputeAndStore_ReplaceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("conflict")
	e := newTestEngine(t, &mockStore{recent: []Candidate{{ID: 1}}, replaceErr: boom})

	if _, err := e.RecomputeAndStore(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if _, err := e.RecomputeAndStore(context.Background(), ""); !errors.Is(err, ErrInvalidUser) {
		t.Errorf("empty user error = %v, want ErrInvalidUser", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero candidates", func(c *Config) { c.CandidateLimit = 0 }, false},
		{"zero neighbors", func(c *Config) { c.NeighborLimit = 0 }, false},
		{"similarity above one", func(c *Config) { c.MinSimilarity = 2 }, false},
		{"zero divisor", func(c *Config) { c.PopularityDivisor = 0 }, false},
		{"zero snapshot", func(c *Config) { c.SnapshotSize = 0 }, false},
		{"zero feed limit", func(c *Config) { c.FeedDefaultLimit = 0 }, false},
		{"weights sum", func(c *Config) { c.Weights.Popularity = 0.2 }, false},
		{"reweighted", func(c *Config) {
			c.Weights = Weights{Content: 0.5, Collaborative: 0.3, SellerReputation: 0.1, Popularity: 0.1}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
