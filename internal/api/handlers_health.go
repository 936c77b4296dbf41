// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dealrank/internal/ranking"
)

const healthPingTimeout = 2 * time.Second

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status            string        `json:"status"`
	DatabaseConnected bool          `json:"database_connected"`
	Uptime            float64       `json:"uptime_seconds"`
	Engine            ranking.Stats `json:"engine"`
}

// Health handles GET /api/v1/health. It answers 503 while DuckDB is
// unreachable so load balancers drain the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	dbConnected := h.db != nil && h.db.Ping(ctx) == nil

	health := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.svc != nil {
		health.Engine = h.svc.Stats()
	}

	if !dbConnected {
		health.Status = "degraded"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unavailable", health)
		return
	}
	rw.Success(health)
}
