package ingester

import (
	"context"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/governance"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	BlockSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
		BlockByHeight(ctx context.Context, height uint64) (*model.Block, error)
		BlockByHash(ctx context.Context, hash string) (*model.Block, error)
	}
	BlockFeed interface {
		Subscribe(ctx context.Context) (<-chan model.BlockNotification, error)
	}
	PoolAttributor interface {
		Attribute(ctx context.Context, stakeAddress string) (*model.Pool, error)
	}
	ProposalDetector interface {
		Detect(ctx context.Context, block *model.Block, known governance.ProposalSet) (*model.Proposal, error)
	}
	Publisher interface {
		PublishBlock(ctx context.Context, block *model.Block) error
		PublishProposal(ctx context.Context, proposal model.Proposal) error
	}
	HeightStatsReader interface {
		HeightStats(ctx context.Context) (model.HeightStats, error)
	}
	Repository interface {
		HeightStatsReader
		InsertBlock(ctx context.Context, block *model.Block) error
		InsertProposal(ctx context.Context, proposal model.Proposal) error
		ProposalIDs(ctx context.Context) ([]uint64, error)
		ProcessedBlocksWindow(ctx context.Context) ([]string, error)
		SaveProcessedBlocksWindow(ctx context.Context, hashes []string) error
	}
	IngesterMetrics interface {
		ObserveProcessHeight(mode string, err error, height uint64, started time.Time)
		SetMode(mode string)
		ObserveDuplicate()
		ObserveProposal()
	}
)
