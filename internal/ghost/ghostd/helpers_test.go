package ghostd

import (
	"encoding/json"
	"strings"
	"testing"
)

const (
	testBlockHash = "00000000000000000001a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f7"
	testPrevHash  = "00000000000000000000f1e2d3c4b5a6978869504132231405f6e7d8c9bab0a1"
)

func rawTx(txid string, vout ...string) map[string]any {
	outs := make([]json.RawMessage, 0, len(vout))
	for _, v := range vout {
		outs = append(outs, json.RawMessage(v))
	}
	return map[string]any{
		"txid":     txid,
		"hash":     txid,
		"version":  160,
		"size":     200,
		"vsize":    150,
		"weight":   600,
		"locktime": 0,
		"hex":      "a0",
		"vin":      []json.RawMessage{json.RawMessage(`{"txid":"` + strings.Repeat("1", 64) + `","vout":0}`)},
		"vout":     outs,
	}
}

func rawBlockJSON(t *testing.T, height int64, hash string, txs ...map[string]any) json.RawMessage {
	t.Helper()

	if txs == nil {
		txs = []map[string]any{}
	}
	b, err := json.Marshal(map[string]any{
		"hash":              hash,
		"height":            height,
		"version":           -1610612736,
		"versionHex":        "a0000000",
		"merkleroot":        strings.Repeat("a", 64),
		"witnessmerkleroot": strings.Repeat("b", 64),
		"time":              1700000000,
		"mediantime":        1699999000,
		"nonce":             0,
		"bits":              "1d00ffff",
		"difficulty":        1.5,
		"chainwork":         strings.Repeat("0", 63) + "1",
		"nTx":               len(txs),
		"size":              1000,
		"strippedsize":      800,
		"weight":            3400,
		"previousblockhash": testPrevHash,
		"blocksig":          "3044",
		"hashproofofstake":  strings.Repeat("c", 64),
		"prevstakemodifier": strings.Repeat("d", 64),
		"stakekernelvalue":  12.5,
		"tx":                txs,
	})
	if err != nil {
		t.Fatalf("marshal raw block: %v", err)
	}
	return b
}
