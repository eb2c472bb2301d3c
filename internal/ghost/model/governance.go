package model

import "math"

const (
	// VotingActivationHeight is the chain height above which coinstake votes are counted.
	VotingActivationHeight uint64 = 710_800
	// TallyStartHeight is the first height passed to tallyvotes for every proposal.
	// It is a chain parameter, not derived from the proposal's first appearance.
	TallyStartHeight = VotingActivationHeight
	// TallyEndHeight is the open upper bound passed to tallyvotes.
	TallyEndHeight uint64 = math.MaxInt32
)

// Vote is the governance signal embedded in a block's coinstake data output.
type Vote struct {
	ProposalID uint64 `json:"proposal_id"`
	Option     uint64 `json:"voted_option"`
}

// TallyEntry is the node's count for one option.
type TallyEntry struct {
	Percentage uint64  `json:"percentage"`
	Ratio      float64 `json:"ratio"`
}

// Tally is a snapshot of tallyvotes output.
type Tally struct {
	Options       map[string]TallyEntry `json:"options"`
	BlocksCounted uint64                `json:"blocks_counted"`
	HeightStart   uint64                `json:"height_start"`
	HeightEnd     uint64                `json:"height_end"`
}

// Proposal is registered once, the first time its id is seen in a vote.
type Proposal struct {
	ID               uint64 `json:"proposal_id"`
	Tally            Tally  `json:"tally"`
	CreatedHeight    uint64 `json:"created_height"`
	CreatedBlockHash string `json:"created_block_hash"`
}
