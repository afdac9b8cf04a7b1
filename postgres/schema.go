package postgres

import (
	"context"
	"database/sql"
)

// Schema holds the DDL for the trading core's tables.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	creation_time   TIMESTAMPTZ NOT NULL,
	client_order_id TEXT NOT NULL UNIQUE,
	side            TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	quantity        NUMERIC(20, 8) NOT NULL,
	type            TEXT NOT NULL,
	limit_price     NUMERIC(20, 2),
	currency        TEXT,
	term            TEXT NOT NULL,
	all_or_none     BOOLEAN NOT NULL DEFAULT FALSE,
	status          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_symbol_status ON orders (symbol, status);

CREATE TABLE IF NOT EXISTS executions (
	id            TEXT PRIMARY KEY,
	order_id      TEXT NOT NULL REFERENCES orders (id),
	creation_time TIMESTAMPTZ NOT NULL,
	quantity      NUMERIC(20, 8) NOT NULL,
	price         NUMERIC(20, 2) NOT NULL,
	currency      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_order_id ON executions (order_id);

CREATE TABLE IF NOT EXISTS reference_prices (
	symbol     TEXT PRIMARY KEY,
	price      NUMERIC(20, 2) NOT NULL,
	currency   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the trading core's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
