// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// mockStore implements Store with canned responses.
type mockStore struct {
	mu sync.Mutex

	interactions map[string][]Interaction
	categories   map[int64][]string

	matched   []Candidate
	recent    []Candidate
	purchased map[int64]struct{}

	neighborWeights []NeighborWeight
	neighborCounts  map[int64]int
	totals          map[int64]float64

	feedRows []FeedRow
	clicks   map[int64]int
	users    []string

	snapshots map[string][]SnapshotEntry

	interactionsErr error
	candidatesErr   error
	neighborsErr    error
	countsErr       error
	totalsErr       error
	replaceErr      error

	candidateQueries []CandidateQuery
	neighborCalls    int
	countCalls       int
	interactionCalls int
}

func (m *mockStore) UserInteractions(_ context.Context, userID string) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionCalls++
	if m.interactionsErr != nil {
		return nil, m.interactionsErr
	}
	return m.interactions[userID], nil
}

func (m *mockStore) ItemCategories(_ context.Context, itemIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string)
	for _, id := range itemIDs {
		if c, ok := m.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *mockStore) Candidates(_ context.Context, _ string, q CandidateQuery) ([]Candidate, error) {
	m.mu.Lock()
	m.candidateQueries = append(m.candidateQueries, q)
	m.mu.Unlock()
	if m.candidatesErr != nil {
		return nil, m.candidatesErr
	}
	src := m.recent
	if len(q.Categories) > 0 {
		src = m.matched
	}
	// Hand out copies so engine-side filtering cannot alias fixtures.
	out := make([]Candidate, len(src))
	copy(out, src)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *mockStore) PurchasedItems(_ context.Context, _ string) (map[int64]struct{}, error) {
	if m.purchased == nil {
		return map[int64]struct{}{}, nil
	}
	return m.purchased, nil
}

func (m *mockStore) NeighborWeights(_ context.Context, _ string, limit int) ([]NeighborWeight, error) {
	m.mu.Lock()
	m.neighborCalls++
	m.mu.Unlock()
	if m.neighborsErr != nil {
		return nil, m.neighborsErr
	}
	if len(m.neighborWeights) > limit {
		return m.neighborWeights[:limit], nil
	}
	return m.neighborWeights, nil
}

func (m *mockStore) NeighborCounts(ctx context.Context, _ []int64, _ []string) (map[int64]int, error) {
	m.mu.Lock()
	m.countCalls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	return m.neighborCounts, nil
}

func (m *mockStore) InteractionTotals(ctx context.Context, _ []int64) (map[int64]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.totalsErr != nil {
		return nil, m.totalsErr
	}
	return m.totals, nil
}

func (m *mockStore) ReplaceSnapshot(_ context.Context, userID string, entries []SnapshotEntry) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = make(map[string][]SnapshotEntry)
	}
	m.snapshots[userID] = append([]SnapshotEntry(nil), entries...)
	return nil
}

func (m *mockStore) FeedRows(_ context.Context, _ string, limit, offset int) ([]FeedRow, error) {
	if offset >= len(m.feedRows) {
		return []FeedRow{}, nil
	}
	end := offset + limit
	if end > len(m.feedRows) {
		end = len(m.feedRows)
	}
	return m.feedRows[offset:end], nil
}

func (m *mockStore) ClickCounts(_ context.Context, _ string) (map[int64]int, error) {
	return m.clicks, nil
}

func (m *mockStore) UserIDs(_ context.Context) ([]string, error) {
	return m.users, nil
}

func newTestEngine(t *testing.T, store *mockStore) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func f64(v float64) *float64 { return &v }
