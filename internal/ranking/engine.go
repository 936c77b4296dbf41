// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// defaultGenerateLimit applies when GenerateOptions.Limit is not positive.
const defaultGenerateLimit = 20

// Engine ranks coupons for users. It is safe for concurrent use once
// constructed; SetProfileCache must be called before the first request.
type Engine struct {
	config *Config
	logger zerolog.Logger
	store  Store
	cache  ProfileCache
	now    func() time.Time

	requests   atomic.Int64
	failures   atomic.Int64
	degraded   atomic.Int64
	recomputes atomic.Int64
}

// Stats is a point-in-time view of engine counters.
type Stats struct {
	Requests   int64 `json:"requests"`
	Failures   int64 `json:"failures"`
	Degraded   int64 `json:"degraded"`
	Recomputes int64 `json:"recomputes"`
}

// GenerateOptions controls a ranking run.
type GenerateOptions struct {
	Limit             int
	UseCategoryFilter bool
}

// DefaultGenerateOptions returns limit 20 with category matching enabled.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Limit: defaultGenerateLimit, UseCategoryFilter: true}
}

// NewEngine creates an engine backed by store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, ErrNoStore
	}
	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "ranking").Logger(),
		store:  store,
		now:    time.Now,
	}, nil
}

// SetProfileCache installs a read-through profile cache.
func (e *Engine) SetProfileCache(c ProfileCache) {
	e.cache = c
}

// Config returns the engine configuration. Callers must not modify it.
func (e *Engine) Config() *Config {
	return e.config
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:   e.requests.Load(),
		Failures:   e.failures.Load(),
		Degraded:   e.degraded.Load(),
		Recomputes: e.recomputes.Load(),
	}
}

// Profile builds the user's preference profile, consulting the cache first
// when one is installed.
func (e *Engine) Profile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if e.cache != nil {
		if p, ok := e.cache.GetProfile(ctx, userID); ok {
			return p, nil
		}
	}

	interactions, err := e.store.UserInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	var categories map[int64][]string
	if len(interactions) > 0 {
		categories, err = e.store.ItemCategories(ctx, distinctItems(interactions))
		if err != nil {
			return nil, fmt.Errorf("load item categories: %w", err)
		}
	}

	p := BuildProfile(userID, interactions, categories, e.now().UTC())
	if e.cache != nil {
		e.cache.SetProfile(ctx, p)
	}
	return p, nil
}

// CompareUsers builds both profiles concurrently and returns their
// similarity.
func (e *Engine) CompareUsers(ctx context.Context, userA, userB string) (float64, error) {
	if userA == "" || userB == "" {
		return 0, ErrInvalidUser
	}
	var a, b *Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = e.Profile(gctx, userA)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = e.Profile(gctx, userB)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return CompareProfiles(a, b), nil
}

// Generate ranks eligible candidates for userID.
//
// Candidate selection prefers the category-matched strategy when enabled and
// the profile has categories, and falls back to recency when it yields
// nothing. Popularity and collaborative scoring run concurrently; a failure
// in either degrades that signal to zero unless ctx ended.
func (e *Engine) Generate(ctx context.Context, userID string, opts GenerateOptions) ([]ScoredCandidate, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultGenerateLimit
	}
	start := time.Now()
	e.requests.Add(1)
	logger := e.logger.With().Str("user_id", userID).Logger()

	scored, err := e.generate(ctx, userID, opts)
	if err != nil {
		e.failures.Add(1)
		return nil, err
	}

	logger.Debug().
		Int("returned", len(scored)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("ranking complete")
	return scored, nil
}

func (e *Engine) generate(ctx context.Context, userID string, opts GenerateOptions) ([]ScoredCandidate, error) {
	profile, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.selectCandidates(ctx, userID, profile, opts.UseCategoryFilter)
	if err != nil {
		return nil, err
	}

	purchased, err := e.store.PurchasedItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	candidates = excludePurchased(candidates, purchased)
	if len(candidates) == 0 {
		return []ScoredCandidate{}, nil
	}

	neighbors, err := e.FindNeighbors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	itemIDs := make([]int64, len(candidates))
	for i := range candidates {
		itemIDs[i] = candidates[i].ID
	}

	var popularity, collaborative map[int64]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		popularity, err = e.popularityScores(gctx, itemIDs)
		return err
	})
	g.Go(func() error {
		var err error
		collaborative, err = e.collaborativeScores(gctx, itemIDs, neighbors)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]ScoredCandidate, len(candidates))
	for i := range candidates {
		id := candidates[i].ID
		scored[i] = e.score(&candidates[i], profile, collaborative[id], popularity[id])
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored, nil
}

func (e *Engine) selectCandidates(ctx context.Context, userID string, p *Profile, useCategories bool) ([]Candidate, error) {
	unconstrained := CandidateQuery{Limit: e.config.CandidateLimit}

	if useCategories && p.HasCategories() {
		matched, err := e.store.Candidates(ctx, userID, CandidateQuery{
			Categories: p.CategoryNames(),
			Limit:      e.config.CandidateLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("load category candidates: %w", err)
		}
		if len(matched) > 0 {
			return matched, nil
		}
	}

	all, err := e.store.Candidates(ctx, userID, unconstrained)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return all, nil
}

// score blends the sub-scores. The final score is computed from unrounded
// inputs and then rounded, so ordering follows the reported value.
func (e *Engine) score(c *Candidate, p *Profile, collaborative, popularity float64) ScoredCandidate {
	content := ContentScore(c, p)
	seller := ReputationScore(c.SellerReputation)
	w := e.config.Weights
	final := roundTo(w.Content*content+w.Collaborative*collaborative+w.SellerReputation*seller+w.Popularity*popularity, 3)

	return ScoredCandidate{
		Candidate: *c,
		Scores: Scores{
			ContentBased:     roundTo(content, 3),
			Collaborative:    roundTo(collaborative, 3),
			SellerReputation: roundTo(seller, 3),
			Popularity:       roundTo(popularity, 3),
			Final:            final,
		},
		FinalScore: final,
	}
}

// Quick returns the top limit recommendations in the compact projection.
func (e *Engine) Quick(ctx context.Context, userID string, limit int) ([]QuickRecommendation, error) {
	scored, err := e.Detailed(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]QuickRecommendation, len(scored))
	for i := range scored {
		s := &scored[i]
		out[i] = QuickRecommendation{
			ID:         s.ID,
			Code:       s.Code,
			FinalScore: s.FinalScore,
			Discount:   s.Discount,
			Price:      s.Price,
		}
	}
	return out, nil
}

// Detailed returns the top limit recommendations with every sub-score.
// It over-fetches twice the limit before slicing.
func (e *Engine) Detailed(ctx context.Context, userID string, limit int) ([]ScoredCandidate, error) {
	if limit <= 0 {
		limit = defaultGenerateLimit
	}
	scored, err := e.Generate(ctx, userID, GenerateOptions{Limit: limit * 2, UseCategoryFilter: true})
	if err != nil {
		return nil, err
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func excludePurchased(candidates []Candidate, purchased map[int64]struct{}) []Candidate {
	if len(purchased) == 0 {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		if _, bought := purchased[c.ID]; !bought {
			out = append(out, c)
		}
	}
	return out
}

func distinctItems(interactions []Interaction) []int64 {
	seen := make(map[int64]struct{}, len(interactions))
	ids := make([]int64, 0, len(interactions))
	for _, in := range interactions {
		if _, ok := seen[in.ItemID]; ok {
			continue
		}
		seen[in.ItemID] = struct{}{}
		ids = append(ids, in.ItemID)
	}
	return ids
}
