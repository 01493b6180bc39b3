package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS denominations (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		amount integer NOT NULL CHECK (amount > 0),
		type text NOT NULL CHECK (type IN ('COIN', 'BILL')),
		is_active boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cash_stock (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		denomination_id uuid NOT NULL UNIQUE REFERENCES denominations(id),
		quantity integer NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name text NOT NULL,
		price integer NOT NULL CHECK (price > 0),
		sku text NOT NULL UNIQUE,
		is_active boolean NOT NULL DEFAULT true,
		created_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS product_stock (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id uuid NOT NULL UNIQUE REFERENCES products(id),
		quantity integer NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		status text NOT NULL DEFAULT 'IN_PROGRESS'
			CHECK (status IN ('IN_PROGRESS', 'SUCCESS', 'CANCELLED', 'FAILED')),
		product_id uuid REFERENCES products(id),
		paid_amount integer NOT NULL DEFAULT 0,
		credit_amount integer NOT NULL DEFAULT 0,
		change_amount integer NOT NULL DEFAULT 0,
		remark text,
		created_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_deposits (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id uuid NOT NULL REFERENCES orders(id),
		denomination_id uuid NOT NULL REFERENCES denominations(id),
		quantity integer NOT NULL CHECK (quantity > 0),
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_change (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id uuid NOT NULL REFERENCES orders(id),
		denomination_id uuid NOT NULL REFERENCES denominations(id),
		quantity integer NOT NULL CHECK (quantity > 0),
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash text NOT NULL UNIQUE,
		key_prefix text NOT NULL,
		label text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key_id text PRIMARY KEY,
		response_status integer NOT NULL,
		response_body bytea NOT NULL,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_jobs (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		url text NOT NULL,
		payload jsonb NOT NULL,
		status text NOT NULL DEFAULT 'PENDING',
		attempts integer NOT NULL DEFAULT 0,
		next_run_at timestamptz NOT NULL DEFAULT NOW(),
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
}

// Initial float: coins deep enough for change-making, bills thinning out
// toward the top of the range.
var seedDenominations = []struct {
	Amount   int64
	Kind     string
	Quantity int
}{
	{1, "COIN", 1000},
	{5, "COIN", 1000},
	{10, "COIN", 1000},
	{20, "BILL", 200},
	{50, "BILL", 200},
	{100, "BILL", 300},
	{500, "BILL", 100},
	{1000, "BILL", 20},
}

// Migrate creates the schema and seeds the denomination catalog and float
// when the catalog is empty.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM denominations`).Scan(&count); err != nil {
		return fmt.Errorf("count denominations: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, seed := range seedDenominations {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO denominations (amount, type) VALUES ($1, $2)
			RETURNING id`, seed.Amount, seed.Kind).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed denomination %d: %w", seed.Amount, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO cash_stock (denomination_id, quantity) VALUES ($1, $2)`, id, seed.Quantity); err != nil {
			return fmt.Errorf("seed cash stock %d: %w", seed.Amount, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}

	slog.Info("seeded denominations and cash stock", "denominations", len(seedDenominations))
	return nil
}
