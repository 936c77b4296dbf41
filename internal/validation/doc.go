// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is shared process-wide; it caches struct metadata
and is safe for concurrent use. Field names in error messages follow the
query or json struct tag.

Custom tags:
  - userid: non-empty, at most 128 bytes, no whitespace or control characters

Example:

	type feedRequest struct {
	    Limit  int    `query:"limit" validate:"min=1,max=100"`
	    Cursor string `query:"cursor"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
	    return
	}
*/
package validation
