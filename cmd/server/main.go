// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/dealrank/internal/config"
	"github.com/tomtom215/dealrank/internal/database"
	"github.com/tomtom215/dealrank/internal/logging"
	"github.com/tomtom215/dealrank/internal/metrics"
	"github.com/tomtom215/dealrank/internal/ranking"
	"github.com/tomtom215/dealrank/internal/supervisor"
	"github.com/tomtom215/dealrank/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("sweep_enabled", cfg.Sweep.Enabled).
		Bool("profile_cache", cfg.Cache.Enabled).
		Msg("Starting Dealrank")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	engine, err := ranking.NewEngine(rankingConfig(&cfg.Ranking), database.NewRankingStore(db), logging.Logger())
	if err != nil {
		return err
	}

	closeCache := initProfileCache(ctx, cfg, engine)
	defer closeCache()

	router, err := initRouter(cfg, engine, db)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return err
	}

	if cfg.Sweep.Enabled {
		sweep, err := services.NewSweepService(engine, services.SweepConfig{
			Schedule:     cfg.Sweep.Schedule,
			RunOnStartup: cfg.Sweep.RunOnStartup,
			Workers:      cfg.Sweep.Workers,
			RatePerSec:   cfg.Sweep.RatePerSec,
			Timeout:      cfg.Sweep.Timeout,
		}, logging.Logger())
		if err != nil {
			return err
		}
		tree.AddRankingService(sweep)
	} else {
		logging.Info().Msg("Snapshot sweep disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.Logger()))

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if ctx.Err() != nil {
		logging.Info().Msg("Received shutdown signal")
	}
	return nil
}
