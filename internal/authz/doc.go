// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package authz provides authorization using Casbin.

The model (model.conf) is role-based with an ownership scope: a request is
(role, resource, action, scope) where scope is "self" when the caller acts
on their own user ID and "other" otherwise. The embedded policy (policy.csv)
lets users read and recompute their own rankings and lets administrators act
on anyone. Both files can be overridden from disk.

Resources: recommendations, recommendations_full, profile, compare, feed and
compute. Actions: read and write.

Decisions are cached per (role, resource, action, scope) tuple, which is a
small finite set.
*/
package authz
