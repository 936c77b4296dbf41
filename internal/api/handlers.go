// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dealrank/internal/auth"
	"github.com/tomtom215/dealrank/internal/ranking"
)

const (
	defaultLimit          = 20
	maxLimit              = 100
	defaultRequestTimeout = 10 * time.Second
)

// RankingService is the slice of *ranking.Engine the handlers use.
type RankingService interface {
	Profile(ctx context.Context, userID string) (*ranking.Profile, error)
	CompareUsers(ctx context.Context, userA, userB string) (float64, error)
	Generate(ctx context.Context, userID string, opts ranking.GenerateOptions) ([]ranking.ScoredCandidate, error)
	Quick(ctx context.Context, userID string, limit int) ([]ranking.QuickRecommendation, error)
	Detailed(ctx context.Context, userID string, limit int) ([]ranking.ScoredCandidate, error)
	RecomputeAndStore(ctx context.Context, userID string) (ranking.RecomputeResult, error)
	Feed(ctx context.Context, userID string, limit int, cursor string) (*ranking.FeedPage, error)
	Stats() ranking.Stats
}

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the ranking endpoints.
type Handler struct {
	svc            RankingService
	db             Pinger
	logger         zerolog.Logger
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates a handler. A non-positive requestTimeout falls back to
// ten seconds.
func NewHandler(svc RankingService, db Pinger, requestTimeout time.Duration, logger zerolog.Logger) *Handler { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Handler{
		svc:            svc,
		db:             db,
		logger:         logger.With().Str("component", "api").Logger(),
		requestTimeout: requestTimeout,
		startTime:      time.Now(),
	}
}

// targetUser returns the user a request acts on: the user_id parameter when
// present, otherwise the authenticated caller. Authorization of the target
// has already been decided by the authz middleware.
func targetUser(r *http.Request) string {
	if id := r.URL.Query().Get("user_id"); id != "" {
		return id
	}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return p.UserID
	}
	return ""
}

// parseLimit reads an integer query parameter. Absent means def; anything
// that is not an integer is an error. Range checks belong to the validator.
func parseLimit(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// feedLimit reads the feed page size leniently. Missing, non-integer and
// non-positive values yield 0 so the engine applies its configured default;
// anything above maxLimit is clamped.
func feedLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	switch {
	case err != nil || n <= 0:
		return 0
	case n > maxLimit:
		return maxLimit
	}
	return n
}

// writeServiceError maps an engine error to the envelope.
func (h *Handler) writeServiceError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ranking.ErrInvalidUser):
		rw.BadRequest("user id is required")
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Ranking request timed out")
		rw.ServiceUnavailable("ranking timed out")
	case errors.Is(err, context.Canceled):
		// The client is likely gone; the status still keeps metrics honest.
		h.logger.Debug().Str("path", r.URL.Path).Msg("Ranking request canceled")
		rw.Error(StatusClientClosedRequest, ErrCodeRequestCanceled, "request canceled")
	default:
		rw.DatabaseError(err)
	}
}
