// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/dealrank/internal/auth"
	"github.com/tomtom215/dealrank/internal/authz"
	"github.com/tomtom215/dealrank/internal/middleware"
)

// Router wires handlers to routes with their middleware.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. authn and authz are required.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authzMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.authn.Authenticate)

			target := authz.QueryTarget("user_id")
			read := func(resource string) func(http.Handler) http.Handler {
				return router.authz.Authorize(resource, authz.ActionRead, target)
			}

			r.With(read(authz.ResourceRecommendations)).Get("/recommendations", router.handler.Recommendations)
			r.With(read(authz.ResourceRecommendationsFull)).Get("/recommendations/full", router.handler.FullRecommendations)
			r.With(read(authz.ResourceProfile)).Get("/recommendations/profile", router.handler.Profile)
			r.With(read(authz.ResourceCompare)).Get("/recommendations/compare", router.handler.Compare)
			r.With(router.authz.Authorize(authz.ResourceCompute, authz.ActionWrite, target)).
				Post("/recommendations/compute", router.handler.Compute)
			r.With(read(authz.ResourceFeed)).Get("/feed", router.handler.Feed)
		})
	})

	return r
}
