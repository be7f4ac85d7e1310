// Package database is the run ledger: runs, product observations, page
// logs and trace events, persisted per run_id. It is a sink for finalized
// sequences; no extraction logic lives here.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ,
	category_url TEXT NOT NULL,
	max_pages    INTEGER NOT NULL,
	status       TEXT NOT NULL,
	note         TEXT
);

CREATE TABLE IF NOT EXISTS products (
	id             BIGSERIAL PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES runs(run_id),
	observed_at    TEXT NOT NULL,
	page_number    INTEGER NOT NULL,
	page_url       TEXT NOT NULL,
	source         TEXT NOT NULL,
	product_id     TEXT,
	product_url    TEXT,
	title          TEXT NOT NULL,
	brand          TEXT,
	product_type   TEXT,
	fat_pct        TEXT,
	pack_qty       DOUBLE PRECISION,
	pack_unit      TEXT,
	price_current  DOUBLE PRECISION NOT NULL,
	price_old      DOUBLE PRECISION,
	discount_pct   DOUBLE PRECISION,
	price_per_unit DOUBLE PRECISION,
	raw_json       TEXT
);

CREATE TABLE IF NOT EXISTS page_logs (
	id          BIGSERIAL PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	page_number INTEGER NOT NULL,
	page_url    TEXT NOT NULL,
	method      TEXT NOT NULL,
	status      TEXT NOT NULL,
	http_status INTEGER,
	items_seen  INTEGER NOT NULL,
	items_saved INTEGER NOT NULL,
	note        TEXT
);

CREATE TABLE IF NOT EXISTS log_events (
	id      BIGSERIAL PRIMARY KEY,
	run_id  TEXT NOT NULL REFERENCES runs(run_id),
	ts      TIMESTAMPTZ NOT NULL,
	level   TEXT NOT NULL,
	event   TEXT NOT NULL,
	message TEXT
);

CREATE INDEX IF NOT EXISTS idx_products_run ON products(run_id);
CREATE INDEX IF NOT EXISTS idx_products_run_page ON products(run_id, page_number);
CREATE INDEX IF NOT EXISTS idx_page_logs_run ON page_logs(run_id);
CREATE INDEX IF NOT EXISTS idx_log_events_run ON log_events(run_id);
`

// InitSchema creates the ledger tables when missing.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
