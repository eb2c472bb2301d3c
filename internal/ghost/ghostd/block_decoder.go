package ghostd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/goodnatureofminers/ghost-indexer/pkg/safe"
)

type rawBlock struct {
	Hash                 string           `json:"hash"`
	Height               *int64           `json:"height"`
	Version              int32            `json:"version"`
	VersionHex           string           `json:"versionHex"`
	MerkleRoot           string           `json:"merkleroot"`
	WitnessMerkleRoot    string           `json:"witnessmerkleroot"`
	Time                 int64            `json:"time"`
	MedianTime           int64            `json:"mediantime"`
	Nonce                uint64           `json:"nonce"`
	Bits                 string           `json:"bits"`
	Difficulty           float64          `json:"difficulty"`
	Chainwork            string           `json:"chainwork"`
	NTx                  int              `json:"nTx"`
	Size                 int              `json:"size"`
	StrippedSize         int              `json:"strippedsize"`
	Weight               int              `json:"weight"`
	PreviousBlockHash    string           `json:"previousblockhash"`
	BlockSig             string           `json:"blocksig"`
	HashProofOfStake     string           `json:"hashproofofstake"`
	PrevStakeModifier    string           `json:"prevstakemodifier"`
	StakeKernelBlockHash string           `json:"stakekernelblockhash"`
	StakeKernelScript    string           `json:"stakekernelscript"`
	StakeKernelValue     *float64         `json:"stakekernelvalue"`
	Tx                   []rawTransaction `json:"tx"`
}

type rawTransaction struct {
	TxID     string            `json:"txid"`
	Hash     string            `json:"hash"`
	Version  int32             `json:"version"`
	Size     int               `json:"size"`
	VSize    int               `json:"vsize"`
	Weight   int               `json:"weight"`
	LockTime uint32            `json:"locktime"`
	Hex      string            `json:"hex"`
	Vin      []json.RawMessage `json:"vin"`
	Vout     []json.RawMessage `json:"vout"`
}

// DecodeBlock converts a getblock (verbosity 2) response into a model.Block.
// Stake address, pool and vote are left empty; see ExtractStakeAddress and ExtractVote.
func DecodeBlock(raw json.RawMessage, network model.Network) (*model.Block, error) {
	var src rawBlock
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, chain.NewDecodeError(0, "", fmt.Errorf("%w: %v", chain.ErrMalformedBlock, err))
	}
	if src.Hash == "" || src.Height == nil {
		return nil, chain.NewDecodeError(0, src.Hash, fmt.Errorf("%w: missing hash or height", chain.ErrMalformedBlock))
	}

	height, err := safe.Uint64(*src.Height)
	if err != nil {
		return nil, chain.NewDecodeError(0, src.Hash, fmt.Errorf("%w: height: %v", chain.ErrMalformedBlock, err))
	}
	malformed := func(field string, err error) error {
		return chain.NewDecodeError(height, src.Hash, fmt.Errorf("%w: %s: %v", chain.ErrMalformedBlock, field, err))
	}

	if src.NTx != len(src.Tx) {
		return nil, malformed("nTx", fmt.Errorf("%d declared, %d present", src.NTx, len(src.Tx)))
	}
	bits, err := ParseBits(src.Bits)
	if err != nil {
		return nil, malformed("bits", err)
	}
	size, err := safe.Uint32(src.Size)
	if err != nil {
		return nil, malformed("size", err)
	}
	strippedSize, err := safe.Uint32(src.StrippedSize)
	if err != nil {
		return nil, malformed("stripped size", err)
	}
	weight, err := safe.Uint32(src.Weight)
	if err != nil {
		return nil, malformed("weight", err)
	}
	txCount, err := safe.Uint32(len(src.Tx))
	if err != nil {
		return nil, malformed("tx count", err)
	}

	block := &model.Block{
		Network:              network,
		Height:               height,
		Hash:                 src.Hash,
		PreviousHash:         src.PreviousBlockHash,
		Timestamp:            time.Unix(src.Time, 0).UTC(),
		MedianTime:           time.Unix(src.MedianTime, 0).UTC(),
		Version:              src.Version,
		VersionHex:           src.VersionHex,
		MerkleRoot:           src.MerkleRoot,
		WitnessMerkleRoot:    src.WitnessMerkleRoot,
		Bits:                 bits,
		Nonce:                src.Nonce,
		Difficulty:           src.Difficulty,
		Chainwork:            src.Chainwork,
		Size:                 size,
		StrippedSize:         strippedSize,
		Weight:               weight,
		TXCount:              txCount,
		BlockSig:             src.BlockSig,
		HashProofOfStake:     src.HashProofOfStake,
		PrevStakeModifier:    src.PrevStakeModifier,
		StakeKernelBlockHash: src.StakeKernelBlockHash,
		StakeKernelScript:    src.StakeKernelScript,
		StakeKernelValue:     src.StakeKernelValue,
		Transactions:         make([]model.Transaction, 0, len(src.Tx)),
	}

	for txIdx, tx := range src.Tx {
		decoded, err := decodeTransaction(tx)
		if err != nil {
			decodeErr := &chain.DecodeError{Height: height, Hash: src.Hash, TxIndex: txIdx, OutputIndex: -1, Err: err}
			var outErr *outputError
			if errors.As(err, &outErr) {
				decodeErr.OutputIndex = outErr.index
				decodeErr.Err = outErr.err
			}
			return nil, decodeErr
		}
		block.Transactions = append(block.Transactions, decoded)
	}

	return block, nil
}

type outputError struct {
	index int
	err   error
}

func (e *outputError) Error() string { return fmt.Sprintf("output %d: %v", e.index, e.err) }
func (e *outputError) Unwrap() error { return e.err }

func decodeTransaction(tx rawTransaction) (model.Transaction, error) {
	size, err := safe.Uint32(tx.Size)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: tx %s size: %v", chain.ErrMalformedBlock, tx.TxID, err)
	}
	vsize, err := safe.Uint32(tx.VSize)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: tx %s vsize: %v", chain.ErrMalformedBlock, tx.TxID, err)
	}
	weight, err := safe.Uint32(tx.Weight)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: tx %s weight: %v", chain.ErrMalformedBlock, tx.TxID, err)
	}

	outputs := make([]model.Output, 0, len(tx.Vout))
	for idx, raw := range tx.Vout {
		out, err := DecodeOutput(raw)
		if err != nil {
			return model.Transaction{}, &outputError{index: idx, err: err}
		}
		outputs = append(outputs, out)
	}

	inputs := tx.Vin
	if inputs == nil {
		inputs = []json.RawMessage{}
	}

	return model.Transaction{
		TxID:     tx.TxID,
		Hash:     tx.Hash,
		Version:  tx.Version,
		Size:     size,
		VSize:    vsize,
		Weight:   weight,
		LockTime: tx.LockTime,
		Hex:      tx.Hex,
		Inputs:   inputs,
		Outputs:  outputs,
	}, nil
}

// ParseBits parses the compact difficulty target encoded as hex.
func ParseBits(bits string) (uint32, error) {
	v, err := strconv.ParseUint(bits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse bits %q: %w", bits, err)
	}
	return uint32(v), nil
}
