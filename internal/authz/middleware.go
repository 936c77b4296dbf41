// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package authz

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/dealrank/internal/auth"
)

// TargetFunc extracts the user a request acts on. Empty means the caller.
type TargetFunc func(r *http.Request) string

// QueryTarget reads the target user from a query parameter.
func QueryTarget(param string) TargetFunc {
	return func(r *http.Request) string {
		return r.URL.Query().Get(param)
	}
}

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
	logger     zerolog.Logger
}

// NewMiddleware creates a new authorization middleware. A nil writeError
// falls back to http.Error.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter, logger zerolog.Logger) *Middleware { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		enforcer:   enforcer,
		writeError: writeError,
		logger:     logger.With().Str("component", "authz").Logger(),
	}
}

// Authorize returns middleware enforcing action on resource. target may be
// nil for endpoints that only act on the caller.
func (m *Middleware) Authorize(resource, action string, target TargetFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "no authentication context")
				return
			}

			var targetUserID string
			if target != nil {
				targetUserID = target(r)
			}

			allowed, err := m.enforcer.Authorize(p, resource, action, targetUserID)
			if err != nil {
				m.logger.Error().Err(err).Str("resource", resource).Msg("Authorization error")
				m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization failed")
				return
			}
			if !allowed {
				m.logger.Debug().
					Str("user_id", p.UserID).
					Str("role", p.Role).
					Str("resource", resource).
					Str("target", targetUserID).
					Msg("Access denied")
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
