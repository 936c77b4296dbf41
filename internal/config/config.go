// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

// Package config loads Dealrank configuration with Koanf v2.
//
// Sources are layered with the usual precedence: environment variables
// override the optional YAML file, which overrides built-in defaults.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Sweep    SweepConfig    `koanf:"sweep"`
	Cache    CacheConfig    `koanf:"cache"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig controls bearer-token verification and request throttling.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". With "none" the caller identity is taken
	// from the user_id query parameter and every request is trusted.
	AuthMode  string `koanf:"auth_mode"`
	JWTSecret string `koanf:"jwt_secret"`

	// AdminRole is the token role allowed to recompute for any user.
	AdminRole string `koanf:"admin_role"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RankingConfig tunes the ranking engine.
type RankingConfig struct {
	CandidateLimit    int            `koanf:"candidate_limit"`
	NeighborLimit     int            `koanf:"neighbor_limit"`
	MinSimilarity     float64        `koanf:"min_similarity"`
	PopularityDivisor float64        `koanf:"popularity_divisor"`
	SnapshotSize      int            `koanf:"snapshot_size"`
	FeedDefaultLimit  int            `koanf:"feed_default_limit"`
	RequestTimeout    time.Duration  `koanf:"request_timeout"`
	Weights           RankingWeights `koanf:"weights"`
}

// RankingWeights blend the four sub-scores into the final score.
type RankingWeights struct {
	Content          float64 `koanf:"content"`
	Collaborative    float64 `koanf:"collaborative"`
	SellerReputation float64 `koanf:"seller_reputation"`
	Popularity       float64 `koanf:"popularity"`
}

// SweepConfig drives the periodic snapshot recompute over every user.
type SweepConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Schedule     string        `koanf:"schedule"` // standard 5-field cron spec
	RunOnStartup bool          `koanf:"run_on_startup"`
	Workers      int           `koanf:"workers"`
	RatePerSec   float64       `koanf:"rate_per_second"` // 0 = unlimited
	Timeout      time.Duration `koanf:"timeout"`
}

// CacheConfig configures the optional Redis profile cache.
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisDB         int           `koanf:"redis_db"`
	TTL             time.Duration `koanf:"ttl"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
