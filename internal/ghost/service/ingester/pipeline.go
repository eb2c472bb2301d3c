package ingester

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/ghostd"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/governance"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"go.uber.org/zap"
)

// pipeline runs the per-block steps shared by catchup and listen.
// prepare is safe to run concurrently; commit must run on the service goroutine in height order.
type pipeline struct {
	attributor PoolAttributor
	detector   ProposalDetector
	repo       Repository
	publisher  Publisher
	metrics    IngesterMetrics
	known      governance.ProposalSet
	logger     *zap.Logger
}

// prepare extracts the stake address and vote and attributes the block to a pool.
func (p *pipeline) prepare(ctx context.Context, block *model.Block) error {
	stakeAddress, err := ghostd.ExtractStakeAddress(block)
	if err != nil {
		return err
	}
	vote, err := ghostd.ExtractVote(block)
	if err != nil {
		return err
	}

	pool, err := p.attributor.Attribute(ctx, stakeAddress)
	if err != nil {
		return fmt.Errorf("attribute block %d: %w", block.Height, err)
	}

	block.StakeAddress = stakeAddress
	block.Vote = vote
	block.Pool = pool
	return nil
}

// commit registers a new proposal if the block reveals one, then persists the block.
func (p *pipeline) commit(ctx context.Context, block *model.Block) error {
	proposal, err := p.detector.Detect(ctx, block, p.known)
	if err != nil {
		return fmt.Errorf("detect proposal at height %d: %w", block.Height, err)
	}

	if proposal != nil {
		if err := p.repo.InsertProposal(ctx, *proposal); err != nil {
			return fmt.Errorf("store proposal %d: %w", proposal.ID, err)
		}
		p.known.Add(proposal.ID)
		p.metrics.ObserveProposal()
	}

	if err := p.repo.InsertBlock(ctx, block); err != nil {
		return fmt.Errorf("store block %d: %w", block.Height, err)
	}

	if proposal != nil {
		if err := p.publisher.PublishProposal(ctx, *proposal); err != nil {
			return fmt.Errorf("publish proposal %d: %w", proposal.ID, err)
		}
	}
	if err := p.publisher.PublishBlock(ctx, block); err != nil {
		return fmt.Errorf("publish block %d: %w", block.Height, err)
	}

	p.logger.Debug("block stored",
		zap.Uint64("height", block.Height),
		zap.String("hash", block.Hash),
		zap.Bool("pool", block.Pool != nil),
		zap.Bool("vote", block.Vote != nil),
	)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) PublishBlock(context.Context, *model.Block) error      { return nil }
func (nopPublisher) PublishProposal(context.Context, model.Proposal) error { return nil }
