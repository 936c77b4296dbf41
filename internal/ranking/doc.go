// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package ranking turns weighted implicit feedback into per-user ranked coupon
lists.

The engine works in two tiers. A precomputation tier builds a preference
profile from the user's clicks, saves, conversations and purchases, selects
eligible candidates, scores them and writes the top results to a per-user
snapshot. A cheap online tier serves a paginated feed that reads the snapshot
and layers live click boosts on top of it.

# Scoring

Every candidate receives four sub-scores in [0,1]:

  - content: price proximity, category overlap, channel fit and seller trust
    measured against the profile
  - collaborative: share of the user's nearest neighbors who touched the item
  - seller reputation: reputation / 100, capped at 1
  - popularity: weighted interaction volume / divisor, capped at 1

The final score is a fixed linear blend (0.45, 0.30, 0.15, 0.10 by default).
Sub-scores and the final score are rounded to three decimals and the ranking
sorts on the rounded value.

# Storage

The package does not import the database layer. Storage is reached through the
Store interface, which internal/database implements against DuckDB. Tests use
an in-memory fake.

# Thread Safety

Engine is safe for concurrent use. Profiles are immutable once built.
*/
package ranking
