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

func TestNormalizeNeighbors(t *testing.T) {
	t.Parallel()

	raw := []NeighborWeight{
		{UserID: "b", SharedItems: 1, CombinedWeight: 5},
		{UserID: "a", SharedItems: 3, CombinedWeight: 20},
		{UserID: "c", SharedItems: 1, CombinedWeight: 1}, // 0.05 < 0.1
		{UserID: "d", SharedItems: 2, CombinedWeight: 2}, // exactly 0.1
	}

	got := NormalizeNeighbors(raw, 0.1)

	if len(got) != 3 {
		t.Fatalf("got %d neighbors, want 3: %+v", len(got), got)
	}
	if got[0].UserID != "a" || got[0].Similarity != 1 {
		t.Errorf("top neighbor = %+v, want a at 1.0", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].Similarity > got[i-1].Similarity {
			t.Errorf("neighbors not descending at %d: %+v", i, got)
		}
		if got[i].Similarity < 0.1 {
			t.Errorf("neighbor below threshold kept: %+v", got[i])
		}
	}
	if got[1].Similarity != 0.25 || got[1].SharedItems != 1 {
		t.Errorf("second neighbor = %+v, want b at 0.25", got[1])
	}
	if raw[0].UserID != "b" {
		t.Error("input slice was reordered")
	}
}

func TestNormalizeNeighbors_Empty(t *testing.T) {
	t.Parallel()

	if got := NormalizeNeighbors(nil, 0.1); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestFindNeighbors_StoreFailureDegrades(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockStore{neighborsErr: errors.New("boom")})

	got, err := e.FindNeighbors(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindNeighbors() error = %v, want degraded nil", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no neighbors", got)
	}
	if e.Stats().Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", e.Stats().Degraded)
	}
}

func TestFindNeighbors_CanceledPropagates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockStore{neighborsErr: context.Canceled})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.FindNeighbors(ctx, "u1"); !errors.Is(err, context.Canceled) {
		t.Errorf("FindNeighbors() error = %v, want context.Canceled", err)
	}
}

func TestCollaborativeScores(t *testing.T) {
	t.Parallel()

	store := &mockStore{neighborCounts: map[int64]int{1: 2, 2: 1, 99: 4}}
	e := newTestEngine(t, store)
	neighbors := []Neighbor{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}, {UserID: "d"}}

	got, err := e.collaborativeScores(context.Background(), []int64{1, 2, 3}, neighbors)
	if err != nil {
		t.Fatalf("collaborativeScores() error = %v", err)
	}
	want := map[int64]float64{1: 0.5, 2: 0.25, 3: 0}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v (items outside the batch must be ignored)", got, want)
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("score[%d] = %v, want %v", id, got[id], w)
		}
	}
}

func TestCollaborativeScores_NoNeighborsSkipsStore(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	e := newTestEngine(t, store)

	got, err := e.collaborativeScores(context.Background(), []int64{1, 2}, nil)
	if err != nil {
		t.Fatalf("collaborativeScores() error = %v", err)
	}
	if got[1] != 0 || got[2] != 0 || len(got) != 2 {
		t.Errorf("got %v, want zeros for every candidate", got)
	}
	if store.countCalls != 0 {
		t.Errorf("store called %d times, want 0", store.countCalls)
	}
}

func TestCollaborativeScores_FailureYieldsZeros(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockStore{countsErr: errors.New("timeout")})

	got, err := e.collaborativeScores(context.Background(), []int64{7}, []Neighbor{{UserID: "a"}})
	if err != nil {
		t.Fatalf("collaborativeScores() error = %v", err)
	}
	if v, ok := got[7]; !ok || v != 0 {
		t.Errorf("got %v, want {7:0}", got)
	}
}
