package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             BIGSERIAL PRIMARY KEY,
		fullname       TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		password_hash  TEXT NOT NULL,
		role           TEXT NOT NULL DEFAULT 'user',
		phone          TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		avatar         TEXT NOT NULL DEFAULT '',
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS passcodes (
		id         BIGSERIAL PRIMARY KEY,
		email      TEXT NOT NULL,
		code       TEXT NOT NULL,
		purpose    TEXT NOT NULL CHECK (purpose IN ('email_verification','password_reset')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		consumed   BOOLEAN NOT NULL DEFAULT FALSE,
		attempts   INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS passcodes_lookup_idx ON passcodes (email, purpose, consumed)`,
	`CREATE INDEX IF NOT EXISTS passcodes_expires_idx ON passcodes (expires_at)`,
	`CREATE TABLE IF NOT EXISTS food_items (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL,
		price        NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		category     TEXT NOT NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		image        TEXT NOT NULL DEFAULT '',
		ingredients  TEXT[] NOT NULL DEFAULT '{}',
		popular      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS food_items_category_idx ON food_items (category)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                   BIGSERIAL PRIMARY KEY,
		order_number         TEXT NOT NULL UNIQUE,
		user_id              BIGINT NOT NULL REFERENCES users(id),
		items                JSONB NOT NULL,
		total                NUMERIC(10,2) NOT NULL CHECK (total >= 0),
		status               TEXT NOT NULL DEFAULT 'pending',
		customer_name        TEXT NOT NULL,
		customer_phone       TEXT NOT NULL DEFAULT '',
		delivery_address     TEXT NOT NULL DEFAULT '',
		special_instructions TEXT NOT NULL DEFAULT '',
		notified             BOOLEAN NOT NULL DEFAULT FALSE,
		payment_intent_id    TEXT NOT NULL DEFAULT '',
		payment_status       TEXT NOT NULL DEFAULT 'pending',
		payment_amount       NUMERIC(10,2) NOT NULL DEFAULT 0,
		payment_method       TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)`,
	`CREATE TABLE IF NOT EXISTS restaurant (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		phone         TEXT NOT NULL,
		email         TEXT NOT NULL,
		address       TEXT NOT NULL,
		opening_hours TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		logo          TEXT NOT NULL DEFAULT '',
		facebook      TEXT NOT NULL DEFAULT '',
		instagram     TEXT NOT NULL DEFAULT '',
		twitter       TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
