// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

// Package query provides SQL building utilities for the database package.
//
// The ranking queries are batched: a single statement scores up to a
// thousand candidates at once, so IN lists are generated with one "?" per
// value and the values are bound positionally. WhereBuilder keeps clause
// order and argument order in lockstep:
//
//	wb := query.NewWhereBuilder()
//	wb.AddInt64s("coupon_id", candidateIDs)
//	wb.AddStrings("user_id", neighborIDs)
//	whereClause, args := wb.Build()
//	// coupon_id IN (?, ?) AND user_id IN (?, ?, ?)
//
// Empty lists render as FALSE so a batch with no members matches no rows.
package query
