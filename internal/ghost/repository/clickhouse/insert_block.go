package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/goodnatureofminers/ghost-indexer/pkg/safe"
)

const insertTransactionsQuery = `
INSERT INTO ghost_transactions (
	network,
	block_height,
	block_hash,
	position,
	txid,
	hash,
	version,
	size,
	vsize,
	weight,
	locktime,
	hex,
	inputs,
	outputs
) VALUES`

const insertBlockQuery = `
INSERT INTO ghost_blocks (
	network,
	height,
	hash,
	previous_hash,
	timestamp,
	median_time,
	version,
	version_hex,
	merkle_root,
	witness_merkle_root,
	bits,
	nonce,
	difficulty,
	chainwork,
	size,
	stripped_size,
	weight,
	tx_count,
	block_sig,
	hash_proof_of_stake,
	prev_stake_modifier,
	stake_kernel_block_hash,
	stake_kernel_script,
	stake_kernel_value,
	stake_address,
	pool_pubkey,
	pool_url,
	pool_active,
	vote_proposal_id,
	vote_option
) VALUES`

// InsertBlock stores the block's transactions and then the block row.
// The block row is written last so that its presence marks the height as committed.
func (r *Repository) InsertBlock(ctx context.Context, block *model.Block) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_block", r.network, err, start)
	}()

	if err = r.insertTransactions(ctx, block); err != nil {
		return err
	}

	batch, err := r.conn.PrepareBatch(ctx, insertBlockQuery)
	if err != nil {
		return fmt.Errorf("prepare block batch: %w", err)
	}

	var (
		poolPubKey, poolURL *string
		poolActive          *bool
		voteProposal        *uint64
		voteOption          *uint64
	)
	if block.Pool != nil {
		poolPubKey, poolURL, poolActive = &block.Pool.PubKey, &block.Pool.URL, &block.Pool.Active
	}
	if block.Vote != nil {
		voteProposal, voteOption = &block.Vote.ProposalID, &block.Vote.Option
	}

	if err = batch.Append(
		string(r.network),
		block.Height,
		block.Hash,
		block.PreviousHash,
		block.Timestamp,
		block.MedianTime,
		block.Version,
		block.VersionHex,
		block.MerkleRoot,
		block.WitnessMerkleRoot,
		block.Bits,
		block.Nonce,
		block.Difficulty,
		block.Chainwork,
		block.Size,
		block.StrippedSize,
		block.Weight,
		block.TXCount,
		block.BlockSig,
		block.HashProofOfStake,
		block.PrevStakeModifier,
		block.StakeKernelBlockHash,
		block.StakeKernelScript,
		block.StakeKernelValue,
		block.StakeAddress,
		poolPubKey,
		poolURL,
		poolActive,
		voteProposal,
		voteOption,
	); err != nil {
		return fmt.Errorf("append block: %w", err)
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert block %d: %w", block.Height, err)
	}
	return nil
}

func (r *Repository) insertTransactions(ctx context.Context, block *model.Block) error {
	if len(block.Transactions) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertTransactionsQuery)
	if err != nil {
		return fmt.Errorf("prepare transactions batch: %w", err)
	}

	for idx, tx := range block.Transactions {
		position, err := safe.Uint32(idx)
		if err != nil {
			return fmt.Errorf("tx %s position overflow: %w", tx.TxID, err)
		}
		inputs, err := json.Marshal(tx.Inputs)
		if err != nil {
			return fmt.Errorf("marshal tx %s inputs: %w", tx.TxID, err)
		}
		outputs, err := json.Marshal(tx.Outputs)
		if err != nil {
			return fmt.Errorf("marshal tx %s outputs: %w", tx.TxID, err)
		}

		if err = batch.Append(
			string(r.network),
			block.Height,
			block.Hash,
			position,
			tx.TxID,
			tx.Hash,
			tx.Version,
			tx.Size,
			tx.VSize,
			tx.Weight,
			tx.LockTime,
			tx.Hex,
			string(inputs),
			string(outputs),
		); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert transactions of block %d: %w", block.Height, err)
	}
	return nil
}
