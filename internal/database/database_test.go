// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/dealrank/internal/config"
)

// testDBSemaphore limits concurrent database creation to prevent resource
// exhaustion in CI. DuckDB CGO calls can hang when many connections work at
// once, so only one test holds a database at any time.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout protection.
// The semaphore is held for the entire test and released by t.Cleanup.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Failed to close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

// exec runs fixture statements and fails the test on the first error.
func exec(t *testing.T, db *DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.conn.Exec(s); err != nil {
			t.Fatalf("fixture %q failed: %v", s, err)
		}
	}
}

// seedMarketplace loads a small marketplace.
//
//	u1 clicks 101 twice, saves 101 and 102, buys 102, and has a deleted
//	   conversation about 109.
//	u2 clicks 101 and 103, saves 102, buys 104.
//	u3 clicks 101 and buys single-use 110.
//
// Coupons 105 (u1's own), 106 (deleted), 107 (inactive) and 108 (expired) are
// never eligible. Shop 3 has no categories.
func seedMarketplace(t *testing.T, db *DB) {
	t.Helper()
	exec(t, db,
		`INSERT INTO users (id, username, reputation) VALUES
			('u1', 'alice', NULL), ('u2', 'bob', 40), ('u3', 'carol', NULL),
			('s1', 'trusted', 90), ('s2', 'unknown', NULL)`,
		`INSERT INTO shops (id, name) VALUES (1, 'Pizza Place'), (2, 'Travel Co'), (3, 'Misc')`,
		`INSERT INTO categories (id, name) VALUES (1, 'Food'), (2, 'Travel'), (3, 'Toys')`,
		`INSERT INTO shops_categories (shop_id, category_id) VALUES (1, 1), (2, 2)`,
		`INSERT INTO coupons (id, code, price, discount, works_online, works_in_store, expiry_date, is_active, is_deleted, is_multiple_use, shop_id, seller_id, created_at) VALUES
			(101, 'PIZZA20', 20, 10, TRUE,  FALSE, NULL,         TRUE,  NULL,  FALSE, 1, 's1', '2026-01-01 00:00:00'),
			(102, 'PIZZA25', 25, 15, FALSE, TRUE,  NULL,         TRUE,  FALSE, FALSE, 1, 's1', '2026-01-02 00:00:00'),
			(103, 'FLY200',  200, 50, TRUE, FALSE, NULL,         TRUE,  FALSE, FALSE, 2, 's2', '2026-01-03 00:00:00'),
			(104, 'MISC',    5,  1,  TRUE,  TRUE,  NULL,         TRUE,  FALSE, TRUE,  3, 's1', '2026-01-04 00:00:00'),
			(105, 'MINE',    30, 5,  TRUE,  FALSE, NULL,         TRUE,  FALSE, FALSE, 1, 'u1', '2026-01-05 00:00:00'),
			(106, 'GONE',    30, 5,  TRUE,  FALSE, NULL,         TRUE,  TRUE,  FALSE, 1, 's1', '2026-01-06 00:00:00'),
			(107, 'OFF',     30, 5,  TRUE,  FALSE, NULL,         FALSE, FALSE, FALSE, 1, 's1', '2026-01-07 00:00:00'),
			(108, 'OLD',     30, 5,  TRUE,  FALSE, '2020-01-01', TRUE,  FALSE, FALSE, 1, 's1', '2026-01-08 00:00:00'),
			(109, 'TRIP',    90, 20, TRUE,  TRUE,  '2099-01-01', TRUE,  FALSE, FALSE, 2, 's2', '2026-01-09 00:00:00'),
			(110, 'SLICE',   18, 5,  TRUE,  FALSE, NULL,         TRUE,  FALSE, FALSE, 1, 's1', '2026-01-10 00:00:00')`,
		`INSERT INTO coupon_clicks (user_id, coupon_id) VALUES
			('u1', 101), ('u1', 101), ('u2', 101), ('u2', 103), ('u3', 101)`,
		`INSERT INTO saves (user_id, coupon_id) VALUES ('u1', 101), ('u1', 102), ('u2', 102)`,
		`INSERT INTO conversations (buyer_id, coupon_id, is_deleted) VALUES ('u1', 109, TRUE)`,
		`INSERT INTO transactions (buyer_id, coupon_id) VALUES ('u1', 102), ('u2', 104), ('u3', 110)`,
	)
}

func TestNew_InitializesSchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	// Schema creation is idempotent.
	if err := db.initSchema(context.Background()); err != nil {
		t.Fatalf("second initSchema() error = %v", err)
	}

	var n int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM user_recommendations`).Scan(&n); err != nil {
		t.Fatalf("snapshot table missing: %v", err)
	}
}

func TestPing_Closed(t *testing.T) {
	var db *DB
	if err := db.Ping(context.Background()); !errors.Is(err, ErrDatabaseClosed) {
		t.Errorf("Ping() on nil DB = %v, want ErrDatabaseClosed", err)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		err                            error
		conflict, internal, connection bool
	}{
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true, false, false},
		{errors.New("Conflict on update of tuple"), true, false, false},
		{errors.New("INTERNAL Error: attempted to access index"), false, true, false},
		{errors.New("sql: database is closed"), false, false, true},
		{errors.New("syntax error"), false, false, false},
		{nil, false, false, false},
	}
	for _, tt := range tests {
		if got := isTransactionConflict(tt.err); got != tt.conflict {
			t.Errorf("isTransactionConflict(%v) = %v", tt.err, got)
		}
		if got := isInternalError(tt.err); got != tt.internal {
			t.Errorf("isInternalError(%v) = %v", tt.err, got)
		}
		if got := isConnectionError(tt.err); got != tt.connection {
			t.Errorf("isConnectionError(%v) = %v", tt.err, got)
		}
	}
}

func TestRetryOnConflict(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retryOnConflict(ctx, func() error {
		calls++
		if calls < 3 {
			return errors.New("Transaction conflict")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("retryOnConflict() = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = retryOnConflict(ctx, func() error {
		calls++
		return errors.New("Transaction conflict")
	})
	if err == nil || calls != maxConflictRetries {
		t.Errorf("retryOnConflict() = %v after %d calls, want exhaustion", err, calls)
	}

	calls = 0
	plain := errors.New("constraint violated")
	err = retryOnConflict(ctx, func() error {
		calls++
		return plain
	})
	if !errors.Is(err, plain) || calls != 1 {
		t.Errorf("non-conflict error retried: %v after %d calls", err, calls)
	}
}
