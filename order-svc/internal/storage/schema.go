package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		description TEXT,
		image_url TEXT,
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		loyalty_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		price NUMERIC(12,2) NOT NULL,
		discount_price NUMERIC(12,2),
		image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (restaurant_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		uid TEXT PRIMARY KEY,
		login_handle TEXT NOT NULL UNIQUE,
		display_name TEXT,
		password_hash TEXT NOT NULL,
		role_claim TEXT NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		email TEXT,
		display_name TEXT,
		role TEXT NOT NULL DEFAULT 'customer',
		restaurant_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pending_orders (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		restaurant_name TEXT,
		items JSONB NOT NULL,
		original_total NUMERIC(12,2) NOT NULL,
		balance_used NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_total NUMERIC(12,2) NOT NULL,
		table_number TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		confirmed_at TIMESTAMPTZ,
		confirmed_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		restaurant_name TEXT,
		original_total NUMERIC(12,2) NOT NULL,
		balance_used NUMERIC(12,2) NOT NULL DEFAULT 0,
		final_total NUMERIC(12,2) NOT NULL,
		table_number TEXT NOT NULL,
		user_id TEXT,
		status TEXT NOT NULL DEFAULT 'confirmed',
		source TEXT NOT NULL DEFAULT 'qr',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		waiter_confirmed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		confirmed_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_balances (
		user_id TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		restaurant_name TEXT,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, restaurant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_jobs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		order_total NUMERIC(12,2) NOT NULL,
		balance_used NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'queued',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		applied_at TIMESTAMPTZ
	)`,
	"CREATE INDEX IF NOT EXISTS orders_restaurant_created_idx ON orders (restaurant_id, waiter_confirmed_at)",
	"CREATE INDEX IF NOT EXISTS ledger_jobs_status_idx ON ledger_jobs (status, created_at)",
	"ALTER TABLE IF EXISTS menu_items ADD COLUMN IF NOT EXISTS category TEXT",
	"ALTER TABLE IF EXISTS restaurants ADD COLUMN IF NOT EXISTS loyalty_percentage NUMERIC(5,2) NOT NULL DEFAULT 0",
	// menus written before categories were records only carried the name on the item
	`INSERT INTO categories (id, restaurant_id, name)
		SELECT md5(restaurant_id || ':' || category), restaurant_id, category
		FROM menu_items WHERE COALESCE(category, '') <> ''
		GROUP BY restaurant_id, category
		ON CONFLICT DO NOTHING`,
}

// Profiles and claims written before the role names were fixed used localized
// or generic spellings.
var roleBackfillStatements = []string{
	"UPDATE profiles SET role = 'businessOwner' WHERE role = 'işletmeci'",
	"UPDATE profiles SET role = 'waiter' WHERE role = 'garson'",
	"UPDATE profiles SET role = 'customer' WHERE role = 'user' OR role = '' OR role IS NULL",
	"UPDATE accounts SET role_claim = 'businessOwner' WHERE role_claim = 'işletmeci'",
	"UPDATE accounts SET role_claim = 'waiter' WHERE role_claim = 'garson'",
	"UPDATE accounts SET role_claim = 'customer' WHERE role_claim = 'user' OR role_claim = ''",
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := append(append([]string{}, schemaStatements...), roleBackfillStatements...)
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
