package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"go.uber.org/zap"
)

const hashBlockTopic = "hashblock"

// parseHashBlock decodes a hashblock multipart message: topic, 32 byte hash, 4 byte little-endian sequence.
func parseHashBlock(parts [][]byte) (model.BlockNotification, error) {
	if len(parts) < 3 {
		return model.BlockNotification{}, fmt.Errorf("hashblock message has %d parts, want 3", len(parts))
	}
	if topic := string(parts[0]); topic != hashBlockTopic {
		return model.BlockNotification{}, fmt.Errorf("unexpected topic %q", topic)
	}
	if len(parts[1]) != chainhash.HashSize {
		return model.BlockNotification{}, fmt.Errorf("block hash has %d bytes, want %d", len(parts[1]), chainhash.HashSize)
	}
	if len(parts[2]) != 4 {
		return model.BlockNotification{}, fmt.Errorf("sequence has %d bytes, want 4", len(parts[2]))
	}

	// The hash is published in display order already.
	hash := hex.EncodeToString(parts[1])
	if _, err := chainhash.NewHashFromStr(hash); err != nil {
		return model.BlockNotification{}, fmt.Errorf("invalid block hash: %w", err)
	}

	return model.BlockNotification{
		Hash:     hash,
		Sequence: binary.LittleEndian.Uint32(parts[2]),
	}, nil
}

// sequenceTracker reports publisher sequence gaps. Missed hashes are recovered by the
// ingester's gap fill, so a gap is only logged.
type sequenceTracker struct {
	last   uint32
	seen   bool
	logger *zap.Logger
}

func (t *sequenceTracker) observe(seq uint32) (gap bool) {
	if t.seen && seq != t.last+1 {
		gap = true
		t.logger.Warn("zmq sequence gap",
			zap.Uint32("previous", t.last),
			zap.Uint32("current", seq),
		)
	}
	t.last, t.seen = seq, true
	return gap
}
