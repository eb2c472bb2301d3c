package model

import (
	"encoding/json"
	"time"
)

// Block is the persisted record of one chain height.
type Block struct {
	Network              Network       `json:"network"`
	Height               uint64        `json:"height"`
	Hash                 string        `json:"hash"`
	PreviousHash         string        `json:"previous_hash,omitempty"`
	Timestamp            time.Time     `json:"timestamp"`
	MedianTime           time.Time     `json:"median_time"`
	Version              int32         `json:"version"`
	VersionHex           string        `json:"version_hex"`
	MerkleRoot           string        `json:"merkle_root"`
	WitnessMerkleRoot    string        `json:"witness_merkle_root"`
	Bits                 uint32        `json:"bits"`
	Nonce                uint64        `json:"nonce"`
	Difficulty           float64       `json:"difficulty"`
	Chainwork            string        `json:"chainwork"`
	Size                 uint32        `json:"size"`
	StrippedSize         uint32        `json:"stripped_size"`
	Weight               uint32        `json:"weight"`
	TXCount              uint32        `json:"tx_count"`
	BlockSig             string        `json:"block_sig,omitempty"`
	HashProofOfStake     string        `json:"hash_proof_of_stake,omitempty"`
	PrevStakeModifier    string        `json:"prev_stake_modifier,omitempty"`
	StakeKernelBlockHash string        `json:"stake_kernel_block_hash,omitempty"`
	StakeKernelScript    string        `json:"stake_kernel_script,omitempty"`
	StakeKernelValue     *float64      `json:"stake_kernel_value,omitempty"`
	Transactions         []Transaction `json:"transactions"`

	// StakeAddress is the stake destination found at tx 0 output 1, if any.
	StakeAddress string `json:"stake_address,omitempty"`
	Pool         *Pool  `json:"pool,omitempty"`
	Vote         *Vote  `json:"vote,omitempty"`
}

// Transaction is a block transaction; its position inside Block.Transactions is significant.
type Transaction struct {
	TxID     string            `json:"txid"`
	Hash     string            `json:"hash"`
	Version  int32             `json:"version"`
	Size     uint32            `json:"size"`
	VSize    uint32            `json:"vsize"`
	Weight   uint32            `json:"weight"`
	LockTime uint32            `json:"locktime"`
	Hex      string            `json:"hex"`
	Inputs   []json.RawMessage `json:"vin"`
	Outputs  []Output          `json:"vout"`
}
