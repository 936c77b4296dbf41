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

func TestPopularityScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total, divisor, want float64
	}{
		{0, 500, 0},
		{250, 500, 0.5},
		{500, 500, 1},
		{1200, 500, 1},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := PopularityScore(tt.total, tt.divisor); got != tt.want {
			t.Errorf("PopularityScore(%v, %v) = %v, want %v", tt.total, tt.divisor, got, tt.want)
		}
	}
}

func TestPopularityScores(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockStore{totals: map[int64]float64{1: 100, 2: 600}})

	got, err := e.popularityScores(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("popularityScores() error = %v", err)
	}
	if got[1] != 0.2 || got[2] != 1 {
		t.Errorf("got %v, want {1:0.2 2:1}", got)
	}
	if _, ok := got[3]; ok {
		t.Errorf("item without activity should be absent, got %v", got[3])
	}
}

func TestPopularityScores_FailureYieldsEmpty(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockStore{totalsErr: errors.New("disk full")})

	got, err := e.popularityScores(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("popularityScores() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}
