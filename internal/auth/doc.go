// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package auth verifies caller identity for the HTTP API.

Tokens are issued by the marketplace backend and signed with a shared HS256
secret. The subject claim carries the user ID and the role claim the
caller's role. Verified callers travel through the request context as a
*Principal:

	p, ok := auth.PrincipalFromContext(r.Context())

# Modes

  - jwt: a Bearer token (or "token" cookie) is required on every request.
  - none: development only. The user_id query parameter names the caller and
    the caller is treated as an administrator.
*/
package auth
