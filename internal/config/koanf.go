// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dealrank/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/dealrank.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			AdminRole:       "admin",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Ranking: RankingConfig{
			CandidateLimit:    1000,
			NeighborLimit:     50,
			MinSimilarity:     0.1,
			PopularityDivisor: 500,
			SnapshotSize:      100,
			FeedDefaultLimit:  20,
			RequestTimeout:    10 * time.Second,
			Weights: RankingWeights{
				Content:          0.45,
				Collaborative:    0.30,
				SellerReputation: 0.15,
				Popularity:       0.10,
			},
		},
		Sweep: SweepConfig{
			Enabled:      true,
			Schedule:     "0 2,8,14,20 * * *", // every six hours
			RunOnStartup: false,
			Workers:      1,
			Timeout:      5 * time.Minute, // per user
		},
		Cache: CacheConfig{
			Enabled:         false,
			RedisAddr:       "localhost:6379",
			TTL:             5 * time.Minute,
			BreakerFailures: 5,
		},
	}
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, in that order, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot leak
// arbitrary keys into the config tree.
var envMappings = map[string]string{
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"admin_role":          "security.admin_role",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"ranking_candidate_limit":    "ranking.candidate_limit",
	"ranking_neighbor_limit":     "ranking.neighbor_limit",
	"ranking_min_similarity":     "ranking.min_similarity",
	"ranking_popularity_divisor": "ranking.popularity_divisor",
	"ranking_snapshot_size":      "ranking.snapshot_size",
	"ranking_feed_default_limit": "ranking.feed_default_limit",
	"ranking_request_timeout":    "ranking.request_timeout",
	"ranking_weight_content":     "ranking.weights.content",
	"ranking_weight_collab":      "ranking.weights.collaborative",
	"ranking_weight_seller":      "ranking.weights.seller_reputation",
	"ranking_weight_popularity":  "ranking.weights.popularity",

	"sweep_enabled":        "sweep.enabled",
	"sweep_schedule":       "sweep.schedule",
	"sweep_run_on_startup": "sweep.run_on_startup",
	"sweep_workers":        "sweep.workers",
	"sweep_rate":           "sweep.rate_per_second",
	"sweep_timeout":        "sweep.timeout",

	"profile_cache_enabled":  "cache.enabled",
	"redis_addr":             "cache.redis_addr",
	"redis_db":               "cache.redis_db",
	"profile_cache_ttl":      "cache.ttl",
	"cache_breaker_failures": "cache.breaker_failures",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
