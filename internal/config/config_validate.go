// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package config

import (
	"fmt"
	"math"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

// minJWTSecretLength matches HS256 key size recommendations.
const minJWTSecretLength = 32

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateSweep(); err != nil {
		return err
	}
	return c.validateCache()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
	case "none":
	default:
		return fmt.Errorf("AUTH_MODE must be one of: jwt, none")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateRanking() error {
	r := c.Ranking
	if r.CandidateLimit < 1 {
		return fmt.Errorf("ranking.candidate_limit must be positive")
	}
	if r.NeighborLimit < 1 {
		return fmt.Errorf("ranking.neighbor_limit must be positive")
	}
	if r.MinSimilarity < 0 || r.MinSimilarity > 1 {
		return fmt.Errorf("ranking.min_similarity must be within [0,1]")
	}
	if r.PopularityDivisor <= 0 {
		return fmt.Errorf("ranking.popularity_divisor must be positive")
	}
	if r.SnapshotSize < 1 || r.FeedDefaultLimit < 1 {
		return fmt.Errorf("ranking sizes and limits must be positive")
	}
	w := r.Weights
	if w.Content < 0 || w.Collaborative < 0 || w.SellerReputation < 0 || w.Popularity < 0 {
		return fmt.Errorf("ranking weights must be non-negative")
	}
	if sum := w.Content + w.Collaborative + w.SellerReputation + w.Popularity; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("ranking weights must sum to 1, got %.4f", sum)
	}
	return nil
}

func (c *Config) validateSweep() error {
	if !c.Sweep.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Sweep.Schedule); err != nil {
		return fmt.Errorf("SWEEP_SCHEDULE is not a valid cron spec: %w", err)
	}
	if c.Sweep.Workers < 1 {
		return fmt.Errorf("SWEEP_WORKERS must be at least 1")
	}
	if c.Sweep.RatePerSec < 0 {
		return fmt.Errorf("SWEEP_RATE must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when the profile cache is enabled")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must be positive")
	}
	return nil
}
