// Package governance registers Ghost governance proposals as votes for them appear on chain.
package governance

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// TallySource fetches the node's vote tally for a proposal.
	TallySource interface {
		TallyVotes(ctx context.Context, proposalID, from, to uint64) (model.Tally, error)
	}
)

// ProposalSet holds the ids of proposals that are already registered.
type ProposalSet map[uint64]struct{}

// NewProposalSet builds a set from ids.
func NewProposalSet(ids []uint64) ProposalSet {
	s := make(ProposalSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ProposalSet) Contains(id uint64) bool {
	_, ok := s[id]
	return ok
}

func (s ProposalSet) Add(id uint64) {
	s[id] = struct{}{}
}

// Tracker detects votes for proposals that are not registered yet.
type Tracker struct {
	tally  TallySource
	logger *zap.Logger
}

func NewTracker(tally TallySource, logger *zap.Logger) *Tracker {
	return &Tracker{tally: tally, logger: logger}
}

// Detect returns a new proposal when block votes for an id missing from known.
// Blocks at or below the voting activation height never register proposals.
func (t *Tracker) Detect(ctx context.Context, block *model.Block, known ProposalSet) (*model.Proposal, error) {
	if block.Height <= model.VotingActivationHeight || block.Vote == nil {
		return nil, nil
	}

	id := block.Vote.ProposalID
	if known.Contains(id) {
		return nil, nil
	}

	tally, err := t.tally.TallyVotes(ctx, id, model.TallyStartHeight, model.TallyEndHeight)
	if err != nil {
		return nil, fmt.Errorf("tally proposal %d: %w", id, err)
	}

	t.logger.Info("new proposal detected",
		zap.Uint64("proposal", id),
		zap.Uint64("height", block.Height),
		zap.String("hash", block.Hash),
		zap.Int("options", len(tally.Options)),
	)

	return &model.Proposal{
		ID:               id,
		Tally:            tally,
		CreatedHeight:    block.Height,
		CreatedBlockHash: block.Hash,
	}, nil
}
