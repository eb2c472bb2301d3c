package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const (
	processedBlocksWindowID uint8 = 1

	processedBlocksWindowQuery = `
SELECT argMax(hashes, updated_at)
FROM ghost_zmq_window
WHERE network = ? AND id = ?`

	saveProcessedBlocksWindowQuery = `
INSERT INTO ghost_zmq_window (
	network,
	id,
	hashes,
	updated_at
) VALUES`
)

// ProcessedBlocksWindow loads the persisted window of live-ingested hashes, oldest first.
func (r *Repository) ProcessedBlocksWindow(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("processed_blocks_window", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, processedBlocksWindowQuery, string(r.network), processedBlocksWindowID)
	if err != nil {
		return nil, fmt.Errorf("query processed blocks window: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	hashes := make([]string, 0)
	if rows.Next() {
		if err = rows.Scan(&hashes); err != nil {
			return nil, fmt.Errorf("scan processed blocks window: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed blocks window: %w", err)
	}

	return hashes, nil
}

// SaveProcessedBlocksWindow replaces the persisted window.
func (r *Repository) SaveProcessedBlocksWindow(ctx context.Context, hashes []string) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("save_processed_blocks_window", r.network, err, start)
	}()

	batch, err := r.conn.PrepareBatch(ctx, saveProcessedBlocksWindowQuery)
	if err != nil {
		return fmt.Errorf("prepare processed blocks window batch: %w", err)
	}
	if err = batch.Append(string(r.network), processedBlocksWindowID, hashes, r.now()); err != nil {
		return fmt.Errorf("append processed blocks window: %w", err)
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("save processed blocks window: %w", err)
	}
	return nil
}
