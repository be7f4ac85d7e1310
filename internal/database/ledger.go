package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/silpodev/silpo-scraper/internal/models"
)

// InsertRun records the start of a run. Re-running with the same run_id
// overwrites the header so a retried run does not leave a stale row.
func (db *DB) InsertRun(ctx context.Context, run models.Run) error {
	query := `
		INSERT INTO runs (run_id, started_at, category_url, max_pages, status, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			finished_at = NULL,
			category_url = EXCLUDED.category_url,
			max_pages = EXCLUDED.max_pages,
			status = EXCLUDED.status,
			note = EXCLUDED.note
	`
	_, err := db.pool.Exec(ctx, query,
		run.RunID, run.StartedAt, run.CategoryURL, run.MaxPages, run.Status, run.Note)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the terminal status and finish time.
func (db *DB) FinishRun(ctx context.Context, runID, status, note string) error {
	query := `
		UPDATE runs SET finished_at = $2, status = $3, note = $4
		WHERE run_id = $1
	`
	_, err := db.pool.Exec(ctx, query, runID, time.Now().UTC(), status, note)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// SaveResult persists rows, page logs and events for a run in one
// transaction. Existing detail rows for the run_id are replaced, so the
// operation is idempotent per run.
func (db *DB) SaveResult(ctx context.Context, result *models.RunResult) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	runID := result.Run.RunID
	for _, table := range []string{"products", "page_logs", "log_events"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", table), runID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if len(result.Rows) > 0 {
		rows := make([][]any, 0, len(result.Rows))
		for _, r := range result.Rows {
			rows = append(rows, []any{
				r.RunID, r.ObservedAt, r.PageNumber, r.PageURL, r.Source,
				r.ProductID, r.ProductURL, r.Title, r.Brand, r.ProductType,
				r.FatPct, r.Pack.Qty, r.Pack.Unit,
				r.PriceCurrent, r.PriceOld, r.DiscountPct, r.PricePerUnit,
				r.RawJSON,
			})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"products"},
			[]string{
				"run_id", "observed_at", "page_number", "page_url", "source",
				"product_id", "product_url", "title", "brand", "product_type",
				"fat_pct", "pack_qty", "pack_unit",
				"price_current", "price_old", "discount_pct", "price_per_unit",
				"raw_json",
			},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy products: %w", err)
		}
	}

	pageLogQuery := `
		INSERT INTO page_logs (run_id, page_number, page_url, method, status, http_status, items_seen, items_saved, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, pl := range result.PageLogs {
		if _, err := tx.Exec(ctx, pageLogQuery,
			runID, pl.PageNumber, pl.PageURL, pl.Method, pl.Status,
			pl.HTTPStatus, pl.ItemsSeen, pl.ItemsSaved, pl.Note); err != nil {
			return fmt.Errorf("failed to insert page log: %w", err)
		}
	}

	eventQuery := `
		INSERT INTO log_events (run_id, ts, level, event, message)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, ev := range result.Events {
		if _, err := tx.Exec(ctx, eventQuery,
			runID, ev.TS, ev.Level, ev.Event, ev.Message); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
