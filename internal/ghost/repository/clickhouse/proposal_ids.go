package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const proposalIDsQuery = `
SELECT DISTINCT proposal_id
FROM ghost_proposals
WHERE network = ?
ORDER BY proposal_id`

// ProposalIDs returns the ids of all registered proposals.
func (r *Repository) ProposalIDs(ctx context.Context) ([]uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("proposal_ids", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, proposalIDsQuery, string(r.network))
	if err != nil {
		return nil, fmt.Errorf("query proposal ids: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan proposal id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposal ids: %w", err)
	}

	return ids, nil
}
