// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// foodShopper has three purchases of 20-priced online Food coupons.
func foodShopper() *mockStore {
	store := &mockStore{
		interactions: map[string][]Interaction{},
		categories:   map[int64][]string{},
		purchased:    map[int64]struct{}{},
	}
	for id := int64(1); id <= 3; id++ {
		store.interactions["u1"] = append(store.interactions["u1"],
			Interaction{ItemID: id, Kind: KindPurchase, Price: 20, WorksOnline: true})
		store.categories[id] = []string{"Food"}
		store.purchased[id] = struct{}{}
	}
	return store
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, nil, zerolog.Nop()); !errors.Is(err, ErrNoStore) {
		t.Errorf("nil store error = %v, want ErrNoStore", err)
	}

	bad := DefaultConfig()
	bad.Weights.Content = 0.9
	if _, err := NewEngine(bad, &mockStore{}, zerolog.Nop()); err == nil {
		t.Error("expected invalid config error")
	}

	e, err := NewEngine(nil, &mockStore{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(nil cfg) error = %v", err)
	}
	if e.Config().CandidateLimit != 1000 {
		t.Errorf("default CandidateLimit = %d", e.Config().CandidateLimit)
	}
}

func TestGenerate_WorkedExample(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.matched = []Candidate{
		{ID: 10, Code: "FOOD10", Price: 22, Categories: []string{"Food"}, WorksOnline: true, SellerReputation: f64(80)},
	}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	s := got[0].Scores
	if s.ContentBased != 0.938 {
		t.Errorf("content = %v, want 0.938", s.ContentBased)
	}
	if s.SellerReputation != 0.8 || s.Collaborative != 0 || s.Popularity != 0 {
		t.Errorf("unexpected sub-scores %+v", s)
	}
	// 0.45*0.93818 + 0.15*0.8
	if got[0].FinalScore != 0.542 || s.Final != 0.542 {
		t.Errorf("final = %v, want 0.542", got[0].FinalScore)
	}
	if len(store.candidateQueries) != 1 || store.candidateQueries[0].Categories[0] != "Food" {
		t.Errorf("expected one category-matched query, got %+v", store.candidateQueries)
	}
}

func TestGenerate_FallsBackToRecent(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.recent = []Candidate{{ID: 20}, {ID: 21}}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want 2 from fallback", len(got))
	}
	if len(store.candidateQueries) != 2 || len(store.candidateQueries[1].Categories) != 0 {
		t.Errorf("queries = %+v, want matched then unconstrained", store.candidateQueries)
	}
}

func TestGenerate_CategoryFilterDisabled(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.matched = []Candidate{{ID: 10}}
	store.recent = []Candidate{{ID: 20}}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", GenerateOptions{Limit: 5})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 20 {
		t.Errorf("got %+v, want only the unconstrained candidate", got)
	}
}

func TestGenerate_ExcludesPurchased(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.matched = []Candidate{{ID: 1}, {ID: 10}, {ID: 3}}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, c := range got {
		if _, bought := store.purchased[c.ID]; bought {
			t.Errorf("purchased item %d returned", c.ID)
		}
	}
	if len(got) != 1 {
		t.Errorf("got %d results, want 1", len(got))
	}
}

func TestGenerate_NoCandidatesSkipsScoring(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "new-user", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
	if store.neighborCalls != 0 {
		t.Errorf("neighbor lookups = %d, want 0", store.neighborCalls)
	}
}

func TestGenerate_OrderingAndBounds(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.matched = []Candidate{
		{ID: 10, Price: 500},
		{ID: 11, Price: 20, Categories: []string{"Food"}, WorksOnline: true, SellerReputation: f64(100)},
		{ID: 12, Price: 30, Categories: []string{"Food", "Toys"}},
	}
	store.neighborWeights = []NeighborWeight{{UserID: "n1", SharedItems: 2, CombinedWeight: 10}}
	store.neighborCounts = map[int64]int{12: 1}
	store.totals = map[int64]float64{10: 5000}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d, want 3", len(got))
	}
	if got[0].ID != 11 {
		t.Errorf("top item = %d, want 11", got[0].ID)
	}
	for i, c := range got {
		if c.FinalScore < 0 || c.FinalScore > 1 {
			t.Errorf("final score out of range: %+v", c)
		}
		if i > 0 && c.FinalScore > got[i-1].FinalScore {
			t.Errorf("not sorted at %d", i)
		}
	}
	// 12 is the only item the single neighbor touched; 10 is saturated popular.
	if got[1].ID != 12 || got[1].Scores.Collaborative != 1 {
		t.Errorf("second item = %d collaborative %v, want 12 at 1", got[1].ID, got[1].Scores.Collaborative)
	}
	if got[2].ID != 10 || got[2].Scores.Popularity != 1 {
		t.Errorf("last item = %d popularity %v, want 10 at 1", got[2].ID, got[2].Scores.Popularity)
	}
}

func TestGenerate_LimitLargerThanAvailable(t *testing.T) {
	t.Parallel()

	store := &mockStore{recent: []Candidate{{ID: 1}, {ID: 2}}}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", GenerateOptions{Limit: 50, UseCategoryFilter: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d, want all 2", len(got))
	}
}

func TestGenerate_ScorerFailuresDegrade(t *testing.T) {
	t.Parallel()

	store := &mockStore{
		recent:          []Candidate{{ID: 1, SellerReputation: f64(50)}},
		neighborWeights: []NeighborWeight{{UserID: "n", CombinedWeight: 3}},
		countsErr:       errors.New("collab down"),
		totalsErr:       errors.New("popularity down"),
	}
	e := newTestEngine(t, store)

	got, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].Scores.Collaborative != 0 || got[0].Scores.Popularity != 0 {
		t.Errorf("got %+v, want degraded zero scores", got)
	}
	if e.Stats().Degraded != 2 {
		t.Errorf("Degraded = %d, want 2", e.Stats().Degraded)
	}
}

func TestGenerate_CanceledContext(t *testing.T) {
	t.Parallel()

	store := &mockStore{
		recent:          []Candidate{{ID: 1}},
		neighborWeights: []NeighborWeight{{UserID: "n", CombinedWeight: 3}},
	}
	e := newTestEngine(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Generate(ctx, "u1", DefaultGenerateOptions())
	if !IsCanceled(err) {
		t.Fatalf("Generate() error = %v, want cancellation", err)
	}
	if e.Stats().Failures != 1 {
		t.Errorf("Failures = %d, want 1", e.Stats().Failures)
	}
}

func TestGenerate_StorageErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("db gone")
	e := newTestEngine(t, &mockStore{interactionsErr: boom})

	if _, err := e.Generate(context.Background(), "u1", DefaultGenerateOptions()); !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, boom)
	}
	if _, err := e.Generate(context.Background(), "", DefaultGenerateOptions()); !errors.Is(err, ErrInvalidUser) {
		t.Errorf("empty user error = %v, want ErrInvalidUser", err)
	}
}

func TestQuickAndDetailed(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	for i := int64(1); i <= 10; i++ {
		store.recent = append(store.recent, Candidate{ID: i, Code: "C", Price: float64(i), Discount: 5, SellerReputation: f64(float64(i * 10))})
	}
	e := newTestEngine(t, store)
	ctx := context.Background()

	detailed, err := e.Detailed(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Detailed() error = %v", err)
	}
	if len(detailed) != 3 {
		t.Fatalf("Detailed() len = %d, want 3", len(detailed))
	}
	if store.candidateQueries[0].Limit != e.Config().CandidateLimit {
		t.Errorf("candidate limit = %d", store.candidateQueries[0].Limit)
	}

	quick, err := e.Quick(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Quick() error = %v", err)
	}
	for i := range quick {
		if quick[i].ID != detailed[i].ID || quick[i].FinalScore != detailed[i].FinalScore {
			t.Errorf("quick[%d] = %+v does not project detailed %+v", i, quick[i], detailed[i].Candidate)
		}
		if quick[i].Discount != 5 {
			t.Errorf("quick discount = %v, want 5", quick[i].Discount)
		}
	}
	if quick[0].ID != 10 {
		t.Errorf("top quick = %d, want 10 (highest reputation)", quick[0].ID)
	}
}

type memCache struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	hits     int
}

func (c *memCache) GetProfile(_ context.Context, userID string) (*Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[userID]
	if ok {
		c.hits++
	}
	return p, ok
}

func (c *memCache) SetProfile(_ context.Context, p *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[p.UserID] = p
}

func TestProfile_UsesCache(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	e := newTestEngine(t, store)
	cache := &memCache{profiles: map[string]*Profile{}}
	e.SetProfileCache(cache)
	ctx := context.Background()

	first, err := e.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	second, err := e.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if first != second {
		t.Error("expected cached profile on second call")
	}
	if store.interactionCalls != 1 || cache.hits != 1 {
		t.Errorf("interaction calls = %d, hits = %d; want 1 and 1", store.interactionCalls, cache.hits)
	}
}

func TestCompareUsers(t *testing.T) {
	t.Parallel()

	store := foodShopper()
	store.interactions["u2"] = store.interactions["u1"]
	e := newTestEngine(t, store)

	got, err := e.CompareUsers(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("CompareUsers() error = %v", err)
	}
	if got != 1 {
		t.Errorf("CompareUsers() = %v, want 1 for identical histories", got)
	}
	got, err = e.CompareUsers(context.Background(), "u1", "stranger")
	if err != nil || got != 0 {
		t.Errorf("CompareUsers(stranger) = %v, %v; want 0, nil", got, err)
	}
}
