// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package database

import (
	"context"
	"fmt"
)

// schemaStatements mirror the marketplace tables the engine reads, plus the
// snapshot table it owns. They are idempotent.
//
// user_recommendations deliberately has no primary key. DuckDB checks
// uniqueness eagerly inside a transaction, which breaks the delete-then-
// reinsert replace; uniqueness per (user, coupon) is upheld by ReplaceSnapshot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		username VARCHAR NOT NULL,
		reputation DOUBLE,
		join_date TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS shops (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shops_categories (
		shop_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		PRIMARY KEY (shop_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id BIGINT PRIMARY KEY,
		code VARCHAR NOT NULL,
		description VARCHAR,
		price DOUBLE,
		discount DOUBLE,
		is_discount_percentage BOOLEAN DEFAULT FALSE,
		works_online BOOLEAN DEFAULT FALSE,
		works_in_store BOOLEAN DEFAULT FALSE,
		expiry_date DATE,
		is_active BOOLEAN DEFAULT TRUE,
		is_deleted BOOLEAN,
		is_multiple_use BOOLEAN DEFAULT FALSE,
		shop_id BIGINT,
		seller_id VARCHAR NOT NULL,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS coupon_clicks (
		user_id VARCHAR NOT NULL,
		coupon_id BIGINT NOT NULL,
		clicked_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS saves (
		user_id VARCHAR NOT NULL,
		coupon_id BIGINT NOT NULL,
		saved_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		buyer_id VARCHAR NOT NULL,
		coupon_id BIGINT NOT NULL,
		is_deleted BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		buyer_id VARCHAR NOT NULL,
		coupon_id BIGINT NOT NULL,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS user_recommendations (
		user_id VARCHAR NOT NULL,
		coupon_id BIGINT NOT NULL,
		score DOUBLE NOT NULL,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_user ON coupon_clicks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_coupon ON coupon_clicks(coupon_id)`,
	`CREATE INDEX IF NOT EXISTS idx_saves_user ON saves(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_buyer ON conversations(buyer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_buyer ON transactions(buyer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_coupon ON transactions(coupon_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user ON user_recommendations(user_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
