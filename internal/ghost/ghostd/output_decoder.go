// Package ghostd decodes Ghost node responses and serves blocks from a ghostd node.
package ghostd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

type outputShape struct {
	kind     model.OutputKind
	required []string
	optional []string
}

// outputShapes is tried in order; the first shape whose key set admits the output wins.
var outputShapes = []outputShape{
	{
		kind:     model.OutputStandard,
		required: []string{"n", "type", "value", "valueSat", "scriptPubKey"},
	},
	{
		kind:     model.OutputData,
		required: []string{"n", "type", "data_hex"},
		optional: []string{"smsgdifficulty", "smsgfeerate", "treasury_fund_cfwd", "ct_fee", "vote"},
	},
	{
		kind:     model.OutputBlind,
		required: []string{"n", "type", "valueCommitment", "data_hex", "rangeproof"},
		optional: []string{"scriptPubKey"},
	},
	{
		kind:     model.OutputAnon,
		required: []string{"n", "type", "pubkey", "valueCommitment", "data_hex", "rangeproof"},
	},
}

func (s outputShape) matches(fields map[string]json.RawMessage) bool {
	for _, key := range s.required {
		if _, ok := fields[key]; !ok {
			return false
		}
	}
	for key := range fields {
		if !s.allows(key) {
			return false
		}
	}
	return true
}

func (s outputShape) allows(key string) bool {
	for _, k := range s.required {
		if k == key {
			return true
		}
	}
	for _, k := range s.optional {
		if k == key {
			return true
		}
	}
	return false
}

// DecodeOutput classifies a raw output object by its key set and decodes it into the matching variant.
func DecodeOutput(raw json.RawMessage) (model.Output, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrUnrecognizedOutputShape, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", chain.ErrUnrecognizedOutputShape)
	}

	for _, shape := range outputShapes {
		if !shape.matches(fields) {
			continue
		}
		out, err := decodeShape(shape.kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s output: %v", chain.ErrUnrecognizedOutputShape, shape.kind, err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: keys %v", chain.ErrUnrecognizedOutputShape, sortedKeys(fields))
}

func decodeShape(kind model.OutputKind, raw json.RawMessage) (model.Output, error) {
	switch kind {
	case model.OutputStandard:
		var out model.StandardOutput
		if err := decodeStrict(raw, &out); err != nil {
			return nil, err
		}
		if err := checkStandardAmount(out); err != nil {
			return nil, err
		}
		return out, nil
	case model.OutputData:
		var out model.DataOutput
		if err := decodeStrict(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	case model.OutputBlind:
		var out model.BlindOutput
		if err := decodeStrict(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	case model.OutputAnon:
		var out model.AnonOutput
		if err := decodeStrict(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown output kind %q", kind)
	}
}

func decodeStrict(raw json.RawMessage, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func checkStandardAmount(out model.StandardOutput) error {
	value, err := strconv.ParseFloat(out.Value.String(), 64)
	if err != nil {
		return fmt.Errorf("parse value %q: %w", out.Value, err)
	}
	amount, err := btcutil.NewAmount(value)
	if err != nil {
		return fmt.Errorf("convert value %q: %w", out.Value, err)
	}
	if amount != out.Amount() {
		return fmt.Errorf("value %s does not match valueSat %d", out.Value, out.ValueSat)
	}
	return nil
}

func sortedKeys(fields map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
