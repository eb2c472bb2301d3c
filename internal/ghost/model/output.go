package model

import (
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil"
)

// OutputKind names one of the structural output variants.
type OutputKind string

var (
	OutputStandard OutputKind = "standard"
	OutputData     OutputKind = "data"
	OutputBlind    OutputKind = "blind"
	OutputAnon     OutputKind = "anon"
)

// Output is a decoded transaction output. Implementations are StandardOutput,
// DataOutput, BlindOutput and AnonOutput.
type Output interface {
	Kind() OutputKind
	Index() uint64
}

// ScriptPubKey is the script section of a standard or blinded output.
type ScriptPubKey struct {
	Asm            string   `json:"asm"`
	Hex            string   `json:"hex"`
	ReqSigs        *uint64  `json:"reqSigs,omitempty"`
	Type           string   `json:"type"`
	Address        *string  `json:"address,omitempty"`
	Addresses      []string `json:"addresses,omitempty"`
	StakeAddresses []string `json:"stakeaddresses,omitempty"`
}

// StandardOutput is a plain value transfer.
type StandardOutput struct {
	N            uint64       `json:"n"`
	Type         string       `json:"type"`
	Value        json.Number  `json:"value"`
	ValueSat     uint64       `json:"valueSat"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

func (o StandardOutput) Kind() OutputKind { return OutputStandard }
func (o StandardOutput) Index() uint64    { return o.N }

// Amount returns the output value in satoshis.
func (o StandardOutput) Amount() btcutil.Amount {
	return btcutil.Amount(int64(o.ValueSat))
}

// DataOutput carries an embedded payload, optionally a governance vote.
type DataOutput struct {
	N                uint64       `json:"n"`
	Type             string       `json:"type"`
	DataHex          string       `json:"data_hex"`
	SmsgDifficulty   *string      `json:"smsgdifficulty,omitempty"`
	SmsgFeeRate      *json.Number `json:"smsgfeerate,omitempty"`
	TreasuryFundCfwd *json.Number `json:"treasury_fund_cfwd,omitempty"`
	CTFee            *json.Number `json:"ct_fee,omitempty"`
	Vote             *string      `json:"vote,omitempty"`
}

func (o DataOutput) Kind() OutputKind { return OutputData }
func (o DataOutput) Index() uint64    { return o.N }

// BlindOutput is a confidential output: the amount is hidden behind a commitment.
type BlindOutput struct {
	N               uint64        `json:"n"`
	Type            string        `json:"type"`
	ValueCommitment string        `json:"valueCommitment"`
	ScriptPubKey    *ScriptPubKey `json:"scriptPubKey,omitempty"`
	DataHex         string        `json:"data_hex"`
	RangeProof      string        `json:"rangeproof"`
}

func (o BlindOutput) Kind() OutputKind { return OutputBlind }
func (o BlindOutput) Index() uint64    { return o.N }

// AnonOutput is a ring-signature output addressed to a one-time public key.
type AnonOutput struct {
	N               uint64 `json:"n"`
	Type            string `json:"type"`
	PubKey          string `json:"pubkey"`
	ValueCommitment string `json:"valueCommitment"`
	DataHex         string `json:"data_hex"`
	RangeProof      string `json:"rangeproof"`
}

func (o AnonOutput) Kind() OutputKind { return OutputAnon }
func (o AnonOutput) Index() uint64    { return o.N }
