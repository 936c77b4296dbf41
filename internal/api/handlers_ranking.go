// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dealrank/internal/metrics"
	"github.com/tomtom215/dealrank/internal/ranking"
	"github.com/tomtom215/dealrank/internal/validation"
)

const (
	detailQuick    = "quick"
	detailDetailed = "detailed"
)

// RecommendationsRequest holds the query of GET /api/v1/recommendations.
type RecommendationsRequest struct {
	UserID string `query:"user_id" validate:"required,userid"`
	Limit  int    `query:"limit" validate:"gte=1,lte=100"`
	Detail string `query:"detail" validate:"oneof=quick detailed"`
}

// LimitRequest holds a bare limit query.
type LimitRequest struct {
	UserID string `query:"user_id" validate:"required,userid"`
	Limit  int    `query:"limit" validate:"gte=1,lte=100"`
}

// CompareRequest holds the query of GET /api/v1/recommendations/compare.
type CompareRequest struct {
	UserID      string `query:"user_id" validate:"required,userid"`
	OtherUserID string `query:"other_user_id" validate:"required,userid"`
}

// FeedRequest holds the query of GET /api/v1/feed. Limit and cursor are
// never rejected: a bad limit means the default and a bad cursor means the
// first page.
type FeedRequest struct {
	UserID string `query:"user_id" validate:"required,userid"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Cursor string `query:"cursor"`
}

// RecommendationsResponse is the payload of the quick and detailed views.
type RecommendationsResponse struct {
	UserID          string      `json:"userId"`
	Count           int         `json:"count"`
	Limit           int         `json:"limit"`
	Detail          string      `json:"detail"`
	Recommendations interface{} `json:"recommendations"`
}

// CompareResponse is the payload of the profile comparison.
type CompareResponse struct {
	UserID      string  `json:"userId"`
	OtherUserID string  `json:"otherUserId"`
	Similarity  float64 `json:"similarity"`
}

// Recommendations handles GET /api/v1/recommendations?user_id=&limit=&detail=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := parseLimit(r, "limit", defaultLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	req := RecommendationsRequest{
		UserID: targetUser(r),
		Limit:  limit,
		Detail: r.URL.Query().Get("detail"),
	}
	if req.Detail == "" {
		req.Detail = detailQuick
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	var (
		items interface{}
		count int
	)
	if req.Detail == detailDetailed {
		scored, err := h.svc.Detailed(ctx, req.UserID, req.Limit)
		if err != nil {
			h.writeServiceError(rw, r, err)
			return
		}
		items, count = scored, len(scored)
	} else {
		quick, err := h.svc.Quick(ctx, req.UserID, req.Limit)
		if err != nil {
			h.writeServiceError(rw, r, err)
			return
		}
		items, count = quick, len(quick)
	}
	metrics.RecordGenerate(req.Detail, time.Since(start), count)

	rw.Success(RecommendationsResponse{
		UserID:          req.UserID,
		Count:           count,
		Limit:           req.Limit,
		Detail:          req.Detail,
		Recommendations: items,
	})
}

// FullRecommendations handles GET /api/v1/recommendations/full?limit=
// It returns the raw ranking with every sub-score.
func (h *Handler) FullRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := parseLimit(r, "limit", defaultLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	req := LimitRequest{UserID: targetUser(r), Limit: limit}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	opts := ranking.DefaultGenerateOptions()
	opts.Limit = req.Limit

	start := time.Now()
	scored, err := h.svc.Generate(ctx, req.UserID, opts)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	metrics.RecordGenerate("full", time.Since(start), len(scored))

	rw.Success(RecommendationsResponse{
		UserID:          req.UserID,
		Count:           len(scored),
		Limit:           req.Limit,
		Detail:          "full",
		Recommendations: scored,
	})
}

// Profile handles GET /api/v1/recommendations/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := targetUser(r)
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	p, err := h.svc.Profile(ctx, userID)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(p)
}

// Compare handles GET /api/v1/recommendations/compare?other_user_id=
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := CompareRequest{
		UserID:      targetUser(r),
		OtherUserID: r.URL.Query().Get("other_user_id"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	sim, err := h.svc.CompareUsers(ctx, req.UserID, req.OtherUserID)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(CompareResponse{
		UserID:      req.UserID,
		OtherUserID: req.OtherUserID,
		Similarity:  sim,
	})
}

// Compute handles POST /api/v1/recommendations/compute?user_id=
// It rebuilds the user's stored snapshot synchronously.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := targetUser(r)
	if userID == "" {
		rw.BadRequest("user id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.svc.RecomputeAndStore(ctx, userID)
	metrics.RecordRecompute(time.Since(start), res.Count, err)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	rw.Success(res)
}

// Feed handles GET /api/v1/feed?limit=&cursor=
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := FeedRequest{
		UserID: targetUser(r),
		Limit:  feedLimit(r),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	page, err := h.svc.Feed(ctx, req.UserID, req.Limit, req.Cursor)
	if err != nil {
		h.writeServiceError(rw, r, err)
		return
	}
	metrics.RecordFeedPage()

	rw.SuccessWithPagination(page, &PaginationMeta{
		Count:      len(page.Items),
		Limit:      page.Limit,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	})
}
