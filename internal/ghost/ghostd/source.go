package ghostd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/goodnatureofminers/ghost-indexer/pkg/safe"
)

const getBlockVerbosity = 2

// Source reads blocks, stake addresses and vote tallies from a ghostd node.
type Source struct {
	rpc     RPCClient
	network model.Network
}

// NewSource creates a Source for the given network.
func NewSource(rpc RPCClient, network model.Network) *Source {
	return &Source{rpc: rpc, network: network}
}

// LatestHeight returns the node's current block count.
func (s *Source) LatestHeight(ctx context.Context) (uint64, error) {
	count, err := s.rpc.GetBlockCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// BlockByHeight fetches and decodes the block at height.
// It returns chain.ErrHeightNotFound when the node has no block there yet.
func (s *Source) BlockByHeight(ctx context.Context, height uint64) (*model.Block, error) {
	rpcHeight, err := safe.Int64(height)
	if err != nil {
		return nil, fmt.Errorf("block height exceeds rpc limit: %w", err)
	}

	hash, err := s.rpc.GetBlockHash(ctx, rpcHeight)
	if err != nil {
		if isHeightOutOfRange(err) {
			return nil, fmt.Errorf("%w: %d: %v", chain.ErrHeightNotFound, height, err)
		}
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}

	block, err := s.BlockByHash(ctx, hash.String())
	if err != nil {
		return nil, err
	}
	if block.Height != height {
		return nil, fmt.Errorf("%w: block %s has height %d, requested %d", chain.ErrProtocolMismatch, block.Hash, block.Height, height)
	}
	return block, nil
}

// BlockByHash fetches and decodes the block identified by hash.
func (s *Source) BlockByHash(ctx context.Context, hash string) (*model.Block, error) {
	if _, err := chainhash.NewHashFromStr(hash); err != nil {
		return nil, fmt.Errorf("invalid block hash %q: %w", hash, err)
	}

	params, err := marshalParams(hash, getBlockVerbosity, true)
	if err != nil {
		return nil, err
	}
	raw, err := s.rpc.RawRequest(ctx, "getblock", params)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}

	block, err := DecodeBlock(raw, s.network)
	if err != nil {
		return nil, err
	}
	if block.Hash != hash {
		return nil, fmt.Errorf("%w: requested block %s, got %s", chain.ErrProtocolMismatch, hash, block.Hash)
	}
	return block, nil
}

// ValidateAddress resolves an address to its stake-only form. An address the node
// reports no stake-only form for resolves to "".
func (s *Source) ValidateAddress(ctx context.Context, address string) (string, error) {
	params, err := marshalParams(address, true)
	if err != nil {
		return "", err
	}
	raw, err := s.rpc.RawRequest(ctx, "validateaddress", params)
	if err != nil {
		return "", fmt.Errorf("validate address %s: %w", address, err)
	}

	var res struct {
		StakeOnlyAddress string `json:"stakeonly_address"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("%w: validateaddress: %v", chain.ErrProtocolMismatch, err)
	}
	return res.StakeOnlyAddress, nil
}

// TallyVotes returns the vote tally of a proposal over [from, to].
func (s *Source) TallyVotes(ctx context.Context, proposalID, from, to uint64) (model.Tally, error) {
	params, err := marshalParams(proposalID, from, to)
	if err != nil {
		return model.Tally{}, err
	}
	raw, err := s.rpc.RawRequest(ctx, "tallyvotes", params)
	if err != nil {
		return model.Tally{}, fmt.Errorf("tally votes for proposal %d: %w", proposalID, err)
	}

	reported, tally, err := ParseTally(raw)
	if err != nil {
		return model.Tally{}, err
	}
	if reported != proposalID {
		return model.Tally{}, fmt.Errorf("%w: tally for proposal %d returned proposal %d", chain.ErrProtocolMismatch, proposalID, reported)
	}
	return tally, nil
}

func isHeightOutOfRange(err error) bool {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == btcjson.ErrRPCInvalidParameter || strings.Contains(strings.ToLower(rpcErr.Message), "out of range")
}

func marshalParams(params ...any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(params))
	for i, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal rpc param %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
