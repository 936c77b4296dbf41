// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/dealrank/internal/ranking"
)

// snapshotInsertBatch bounds rows per multi-row INSERT.
const snapshotInsertBatch = 250

// ReplaceSnapshot swaps the user's snapshot for entries in one transaction.
// Readers see either the old rows or the new rows, never a mix. Conflicting
// concurrent replaces are retried and the last commit wins.
func (s *RankingStore) ReplaceSnapshot(ctx context.Context, userID string, entries []ranking.SnapshotEntry) (err error) {
	if userID == "" {
		return ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("replace", "user_recommendations", start, err) }()

	entries = dedupeEntries(entries)

	return retryOnConflict(ctx, func() error {
		return s.replaceSnapshotTx(ctx, userID, entries)
	})
}

func (s *RankingStore) replaceSnapshotTx(ctx context.Context, userID string, entries []ranking.SnapshotEntry) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	for lo := 0; lo < len(entries); lo += snapshotInsertBatch {
		hi := lo + snapshotInsertBatch
		if hi > len(entries) {
			hi = len(entries)
		}
		batch := entries[lo:hi]

		values := strings.TrimSuffix(strings.Repeat("(?, ?, ?), ", len(batch)), ", ")
		args := make([]any, 0, len(batch)*3)
		for _, e := range batch {
			args = append(args, userID, e.ItemID, e.Score)
		}
		q := `INSERT INTO user_recommendations (user_id, coupon_id, score) VALUES ` + values
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert snapshot rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	committed = true
	return nil
}

// Snapshot returns the user's stored entries, best first.
func (s *RankingStore) Snapshot(ctx context.Context, userID string) (result []ranking.SnapshotEntry, err error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	start := time.Now()
	defer func() { observe("select", "user_recommendations", start, err) }()

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT coupon_id, score FROM user_recommendations WHERE user_id = ? ORDER BY score DESC, coupon_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var e ranking.SnapshotEntry
		if err := rows.Scan(&e.ItemID, &e.Score); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return result, nil
}

// dedupeEntries keeps the first entry per coupon.
func dedupeEntries(entries []ranking.SnapshotEntry) []ranking.SnapshotEntry {
	seen := make(map[int64]struct{}, len(entries))
	out := make([]ranking.SnapshotEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ItemID]; dup {
			continue
		}
		seen[e.ItemID] = struct{}{}
		out = append(out, e)
	}
	return out
}
