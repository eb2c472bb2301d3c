package ghostd

import (
	"context"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RPCClient is the subset of node RPC used to read Ghost blocks and governance data.
	RPCClient interface {
		GetBlockCount(ctx context.Context) (int64, error)
		GetBlockHash(ctx context.Context, height int64) (*chainhash.Hash, error)
		RawRequest(ctx context.Context, method string, params []json.RawMessage) (json.RawMessage, error)
	}
)
