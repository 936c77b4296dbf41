// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/dealrank/internal/logging"
)

var (
	// ErrDatabaseClosed is returned when the connection pool is gone.
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrInvalidUserID is returned for empty user identifiers.
	ErrInvalidUserID = errors.New("user id is required")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
