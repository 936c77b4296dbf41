// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package ranking

import (
	"context"
	"errors"
)

var (
	// ErrInvalidUser is returned when an operation receives an empty user ID.
	ErrInvalidUser = errors.New("ranking: user id is required")

	// ErrNoStore is returned when the engine was built without a store.
	ErrNoStore = errors.New("ranking: store not configured")
)

// IsCanceled reports whether err stems from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
