// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

// Package middleware provides HTTP middleware shared by the API router:
// request ID propagation and Prometheus request instrumentation.
package middleware
