// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/dealrank/internal/metrics"
	"github.com/tomtom215/dealrank/internal/ranking"
)

// DefaultSweepSchedule runs four times a day.
const DefaultSweepSchedule = "0 2,8,14,20 * * *"

// cronStopTimeout bounds how long Serve waits for an in-flight sweep after
// cancellation.
const cronStopTimeout = 30 * time.Second

// ErrSweepRunning is returned when a sweep is requested while one is active.
var ErrSweepRunning = errors.New("sweep already running")

// Recomputer is the part of the ranking engine a sweep drives.
type Recomputer interface {
	UserIDs(ctx context.Context) ([]string, error)
	RecomputeAndStore(ctx context.Context, userID string) (ranking.RecomputeResult, error)
}

// SweepConfig controls a SweepService.
type SweepConfig struct {
	// Schedule is a standard 5-field cron spec or descriptor ("@every 6h").
	Schedule string

	// RunOnStartup sweeps once as soon as the service starts.
	RunOnStartup bool

	// Workers bounds concurrent recomputes. 1 sweeps sequentially.
	Workers int

	// RatePerSec caps recomputes started per second. 0 means unlimited.
	RatePerSec float64

	// Timeout bounds each user's recompute. 0 means no per-user bound.
	Timeout time.Duration
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// SweepService recomputes every user's snapshot on a cron schedule. A
// failure for one user is counted and logged and never stops the sweep.
type SweepService struct {
	engine  Recomputer
	config  SweepConfig
	limiter *rate.Limiter
	logger  zerolog.Logger
	running atomic.Bool
	last    atomic.Pointer[SweepResult]
	name    string
}

// NewSweepService validates cfg and returns a service ready for supervision.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSweepService(engine Recomputer, cfg SweepConfig, logger zerolog.Logger) (*SweepService, error) {
	if engine == nil {
		return nil, errors.New("sweep: engine is required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSweepSchedule
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("sweep: invalid schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	s := &SweepService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "sweep").Logger(),
		name:   "snapshot-sweep",
	}
	if cfg.RatePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return s, nil
}

// Serve implements suture.Service. It blocks until ctx is canceled and then
// waits for an in-flight sweep to observe the cancellation.
func (s *SweepService) Serve(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(&s.logger)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(&s.logger))),
	)
	if _, err := c.AddFunc(s.config.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("sweep: schedule job: %w", err)
	}

	c.Start()
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Int("workers", s.config.Workers).
		Float64("rate_per_second", s.config.RatePerSec).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("Snapshot sweep scheduled")

	if s.config.RunOnStartup {
		go s.runScheduled(ctx)
	}

	<-ctx.Done()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(cronStopTimeout):
		s.logger.Warn().Msg("Sweep still running at shutdown")
	}
	return ctx.Err()
}

func (s *SweepService) runScheduled(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrSweepRunning) {
			s.logger.Info().Msg("Previous sweep still running, skipping")
			return
		}
		s.logger.Error().Err(err).Msg("Snapshot sweep failed")
	}
}

// RunOnce sweeps every user now. Only one sweep runs at a time; a concurrent
// call returns ErrSweepRunning. Cancellation stops new recomputes and
// returns ctx.Err() with the partial result.
func (s *SweepService) RunOnce(ctx context.Context) (SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SweepResult{}, ErrSweepRunning
	}
	defer s.running.Store(false)

	start := time.Now()
	ids, err := s.engine.UserIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list users: %w", err)
	}

	s.logger.Info().Int("users", len(ids)).Msg("Snapshot sweep started")

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.config.Workers)

	for _, userID := range ids {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if s.recomputeUser(ctx, userID) {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	res := SweepResult{
		Total:     len(ids),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		s.logger.Warn().
			Int("succeeded", res.Succeeded).
			Int("failed", res.Failed).
			Int("total", res.Total).
			Msg("Snapshot sweep interrupted")
		return res, err
	}

	metrics.RecordSweep(res.Duration, res.Succeeded, res.Failed)
	s.last.Store(&res)
	s.logger.Info().
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Int("total", res.Total).
		Dur("duration", res.Duration).
		Msg("Snapshot sweep complete")
	return res, nil
}

func (s *SweepService) recomputeUser(ctx context.Context, userID string) bool {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.engine.RecomputeAndStore(ctx, userID)
	metrics.RecordRecompute(time.Since(start), res.Count, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Snapshot recompute failed")
		return false
	}
	return true
}

// LastResult returns the most recent completed sweep, or nil.
func (s *SweepService) LastResult() *SweepResult {
	return s.last.Load()
}

// String implements fmt.Stringer for suture's logs.
func (s *SweepService) String() string {
	return s.name
}
