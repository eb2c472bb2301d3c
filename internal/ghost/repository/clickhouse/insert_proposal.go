package clickhouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

const insertProposalQuery = `
INSERT INTO ghost_proposals (
	network,
	proposal_id,
	created_height,
	created_block_hash,
	options,
	percentages,
	ratios,
	blocks_counted,
	height_start,
	height_end
) VALUES`

// InsertProposal stores a newly detected proposal with its tally snapshot.
func (r *Repository) InsertProposal(ctx context.Context, proposal model.Proposal) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_proposal", r.network, err, start)
	}()

	options := make([]string, 0, len(proposal.Tally.Options))
	for option := range proposal.Tally.Options {
		options = append(options, option)
	}
	sort.Strings(options)

	percentages := make([]uint64, 0, len(options))
	ratios := make([]float64, 0, len(options))
	for _, option := range options {
		entry := proposal.Tally.Options[option]
		percentages = append(percentages, entry.Percentage)
		ratios = append(ratios, entry.Ratio)
	}

	batch, err := r.conn.PrepareBatch(ctx, insertProposalQuery)
	if err != nil {
		return fmt.Errorf("prepare proposal batch: %w", err)
	}

	if err = batch.Append(
		string(r.network),
		proposal.ID,
		proposal.CreatedHeight,
		proposal.CreatedBlockHash,
		options,
		percentages,
		ratios,
		proposal.Tally.BlocksCounted,
		proposal.Tally.HeightStart,
		proposal.Tally.HeightEnd,
	); err != nil {
		return fmt.Errorf("append proposal: %w", err)
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert proposal %d: %w", proposal.ID, err)
	}
	return nil
}
