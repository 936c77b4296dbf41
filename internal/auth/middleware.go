// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware provides authentication middleware
type Middleware struct {
	mode       AuthMode
	jwtManager *JWTManager
	writeError ErrorWriter
	logger     zerolog.Logger
}

// NewMiddleware creates authentication middleware. jwtManager may be nil in
// AuthModeNone. A nil writeError falls back to http.Error.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager, writeError ErrorWriter, logger zerolog.Logger) (*Middleware, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	if mode == AuthModeJWT && jwtManager == nil {
		return nil, errors.New("jwt mode requires a JWT manager")
	}
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		mode:       mode,
		jwtManager: jwtManager,
		writeError: writeError,
		logger:     logger.With().Str("component", "auth").Logger(),
	}, nil
}

// Authenticate is middleware that enforces authentication
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == AuthModeNone {
			userID := r.URL.Query().Get("user_id")
			if userID == "" {
				m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "user_id is required when authentication is disabled")
				return
			}
			p := &Principal{UserID: userID, Role: RoleAdmin}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
			return
		}

		token, err := extractJWTToken(r)
		if err != nil {
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		p, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Token validation failed")
			message := "invalid token"
			if errors.Is(err, ErrExpiredCredentials) {
				message = "token expired"
			}
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}

// extractJWTToken reads the Bearer token from the Authorization header,
// falling back to the "token" cookie.
func extractJWTToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil || cookie.Value == "" {
			return "", ErrNoCredentials
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
