package ghostd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

const (
	coinstakeTxIndex   = 0
	voteOutputIndex    = 0
	stakeOutputIndex   = 1
	votePayloadFields  = 2
	votePayloadDivider = ","
)

// ExtractStakeAddress returns the stake destination of the coinstake transaction.
// Above the voting activation height the stake slot must hold a standard output.
func ExtractStakeAddress(block *model.Block) (string, error) {
	out, ok := outputAt(block, coinstakeTxIndex, stakeOutputIndex)
	standard, isStandard := out.(model.StandardOutput)

	if !ok || !isStandard {
		if block.Height <= model.VotingActivationHeight {
			return "", nil
		}
		variant := "missing"
		if ok {
			variant = string(out.Kind())
		}
		return "", &chain.DecodeError{
			Height:      block.Height,
			Hash:        block.Hash,
			TxIndex:     coinstakeTxIndex,
			OutputIndex: stakeOutputIndex,
			Err:         fmt.Errorf("%w: want standard, got %s", chain.ErrUnexpectedOutputVariant, variant),
		}
	}

	if len(standard.ScriptPubKey.StakeAddresses) == 0 {
		return "", nil
	}
	return standard.ScriptPubKey.StakeAddresses[0], nil
}

// ExtractVote returns the governance vote carried by the coinstake data output, if any.
func ExtractVote(block *model.Block) (*model.Vote, error) {
	if block.Height <= model.VotingActivationHeight {
		return nil, nil
	}

	out, ok := outputAt(block, coinstakeTxIndex, voteOutputIndex)
	if !ok {
		return nil, nil
	}
	data, isData := out.(model.DataOutput)
	if !isData || data.Vote == nil {
		return nil, nil
	}

	vote, err := ParseVote(*data.Vote)
	if err != nil {
		return nil, &chain.DecodeError{
			Height:      block.Height,
			Hash:        block.Hash,
			TxIndex:     coinstakeTxIndex,
			OutputIndex: voteOutputIndex,
			Err:         err,
		}
	}
	return vote, nil
}

// ParseVote parses a "proposal, option" payload.
func ParseVote(payload string) (*model.Vote, error) {
	parts := strings.Split(payload, votePayloadDivider)
	if len(parts) != votePayloadFields {
		return nil, fmt.Errorf("%w: %q has %d fields", chain.ErrMalformedVote, payload, len(parts))
	}

	proposal, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: proposal in %q: %v", chain.ErrMalformedVote, payload, err)
	}
	option, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: option in %q: %v", chain.ErrMalformedVote, payload, err)
	}

	return &model.Vote{ProposalID: proposal, Option: option}, nil
}

func outputAt(block *model.Block, txIdx, outIdx int) (model.Output, bool) {
	if len(block.Transactions) <= txIdx {
		return nil, false
	}
	outputs := block.Transactions[txIdx].Outputs
	if len(outputs) <= outIdx {
		return nil, false
	}
	return outputs[outIdx], true
}
