// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/dealrank/internal/api"
	"github.com/tomtom215/dealrank/internal/auth"
	"github.com/tomtom215/dealrank/internal/authz"
	"github.com/tomtom215/dealrank/internal/cache"
	"github.com/tomtom215/dealrank/internal/config"
	"github.com/tomtom215/dealrank/internal/database"
	"github.com/tomtom215/dealrank/internal/logging"
	"github.com/tomtom215/dealrank/internal/ranking"
)

func rankingConfig(cfg *config.RankingConfig) *ranking.Config {
	return &ranking.Config{
		CandidateLimit:    cfg.CandidateLimit,
		NeighborLimit:     cfg.NeighborLimit,
		MinSimilarity:     cfg.MinSimilarity,
		PopularityDivisor: cfg.PopularityDivisor,
		SnapshotSize:      cfg.SnapshotSize,
		FeedDefaultLimit:  cfg.FeedDefaultLimit,
		Weights: ranking.Weights{
			Content:          cfg.Weights.Content,
			Collaborative:    cfg.Weights.Collaborative,
			SellerReputation: cfg.Weights.SellerReputation,
			Popularity:       cfg.Weights.Popularity,
		},
	}
}

// initProfileCache attaches a profile cache when enabled and returns its
// cleanup. A cache that cannot be built is logged and skipped; ranking
// works without one.
func initProfileCache(ctx context.Context, cfg *config.Config, engine *ranking.Engine) func() {
	if !cfg.Cache.Enabled {
		logging.Info().Msg("Profile cache disabled")
		return func() {}
	}

	pc, err := cache.NewProfileCache(ctx, &cfg.Cache, logging.Logger())
	if err != nil {
		logging.Warn().Err(err).Msg("Profile cache unavailable, continuing without it")
		return func() {}
	}
	engine.SetProfileCache(pc)

	return func() {
		if err := pc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile cache")
		}
	}
}

// initRouter builds authentication, authorization and the HTTP routes.
func initRouter(cfg *config.Config, engine *ranking.Engine, db *database.DB) (*api.Router, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, err
	}

	var jwtManager *auth.JWTManager
	if mode == auth.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return nil, fmt.Errorf("jwt: %w", err)
		}
	} else {
		logging.Warn().Msg("AUTH_MODE=none: every request is treated as admin")
	}

	authn, err := auth.NewMiddleware(mode, jwtManager, api.WriteError, logging.Logger())
	if err != nil {
		return nil, err
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}
	authzMW := authz.NewMiddleware(enforcer, api.WriteError, logging.Logger())

	handler := api.NewHandler(engine, db, cfg.Ranking.RequestTimeout, logging.Logger())
	chiMW := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))

	logging.Info().
		Str("auth_mode", mode.String()).
		Int("rate_limit", cfg.Security.RateLimitReqs).
		Dur("rate_window", cfg.Security.RateLimitWindow).
		Bool("rate_limit_disabled", cfg.Security.RateLimitDisabled).
		Msg("HTTP routes configured")

	return api.NewRouter(handler, authn, authzMW, chiMW), nil
}
