package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

const heightStatsQuery = `
SELECT
	count() AS cnt,
	min(height) AS min_height,
	max(height) AS max_height,
	sum(height) AS sum_height
FROM ghost_blocks
WHERE network = ?`

// HeightStats aggregates the persisted block heights.
func (r *Repository) HeightStats(ctx context.Context) (model.HeightStats, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("height_stats", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, heightStatsQuery, string(r.network))
	if err != nil {
		return model.HeightStats{}, fmt.Errorf("query height stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		err = fmt.Errorf("height stats not found")
		return model.HeightStats{}, err
	}

	var stats model.HeightStats
	if err = rows.Scan(&stats.Count, &stats.Min, &stats.Max, &stats.Sum); err != nil {
		return model.HeightStats{}, fmt.Errorf("scan height stats: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.HeightStats{}, fmt.Errorf("iterate height stats: %w", err)
	}

	return stats, nil
}
