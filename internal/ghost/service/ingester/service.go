// Package ingester drives Ghost block ingestion: a catchup walk over heights followed by
// live ingestion of pushed block hashes.
package ingester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/governance"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/goodnatureofminers/ghost-indexer/pkg/workerpool"
	"go.uber.org/zap"
)

// Config tunes the ingestion service.
type Config struct {
	Network model.Network
	// PrefetchWorkers enables concurrent read-ahead during catchup when greater than one.
	PrefetchWorkers int
}

// Service ingests blocks in strictly ascending height order, one at a time.
type Service struct {
	logger          *zap.Logger
	network         model.Network
	metrics         IngesterMetrics
	source          BlockSource
	feed            BlockFeed
	repo            Repository
	verifier        *Verifier
	pipeline        *pipeline
	prefetchWorkers int

	window model.ProcessedBlocksWindow
	top    uint64
	hasTop bool
}

// NewService builds a Service. publisher may be nil.
func NewService(
	source BlockSource,
	feed BlockFeed,
	repo Repository,
	attributor PoolAttributor,
	detector ProposalDetector,
	publisher Publisher,
	metrics IngesterMetrics,
	cfg Config,
	logger *zap.Logger,
) (*Service, error) {
	if metrics == nil {
		return nil, errors.New("ingester metrics is required")
	}
	if source == nil || feed == nil || repo == nil {
		return nil, errors.New("block source, block feed and repository are required")
	}
	if attributor == nil || detector == nil {
		return nil, errors.New("pool attributor and proposal detector are required")
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}

	logger = logger.With(zap.String("network", string(cfg.Network)))

	return &Service{
		logger:          logger,
		network:         cfg.Network,
		metrics:         metrics,
		source:          source,
		feed:            feed,
		repo:            repo,
		verifier:        NewVerifier(repo, logger.Named("verifier")),
		prefetchWorkers: cfg.PrefetchWorkers,
		pipeline: &pipeline{
			attributor: attributor,
			detector:   detector,
			repo:       repo,
			publisher:  publisher,
			metrics:    metrics,
			known:      governance.NewProposalSet(nil),
			logger:     logger.Named("pipeline"),
		},
	}, nil
}

// Run verifies the stored heights, catches up to the node's tip and then follows the block feed.
// It returns only on error or when ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.restore(ctx); err != nil {
		return err
	}

	if err := s.catchup(ctx); err != nil {
		return err
	}

	return s.listen(ctx)
}

func (s *Service) restore(ctx context.Context) error {
	top, found, err := s.verifier.Verify(ctx)
	if err != nil {
		return err
	}
	s.top, s.hasTop = top, found

	ids, err := s.repo.ProposalIDs(ctx)
	if err != nil {
		return fmt.Errorf("load proposal ids: %w", err)
	}
	s.pipeline.known = governance.NewProposalSet(ids)

	hashes, err := s.repo.ProcessedBlocksWindow(ctx)
	if err != nil {
		return fmt.Errorf("load processed blocks window: %w", err)
	}
	s.window = model.NewProcessedBlocksWindow(hashes)

	s.logger.Info("ingestion state restored",
		zap.Bool("has_blocks", s.hasTop),
		zap.Uint64("top", s.top),
		zap.Int("proposals", len(ids)),
		zap.Int("window", s.window.Len()),
	)
	return nil
}

func (s *Service) nextHeight() uint64 {
	if !s.hasTop {
		return 0
	}
	return s.top + 1
}

func (s *Service) catchup(ctx context.Context) error {
	s.metrics.SetMode(modeCatchup)
	s.logger.Info("catchup started", zap.Uint64("from", s.nextHeight()))

	if s.prefetchWorkers > 1 {
		if err := s.catchupPrefetch(ctx); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		height := s.nextHeight()
		block, err := s.fetchByHeight(ctx, height)
		if errors.Is(err, chain.ErrHeightNotFound) {
			s.logger.Info("catchup reached node tip", zap.Uint64("next", height))
			return nil
		}
		if err != nil {
			s.metrics.ObserveProcessHeight(modeCatchup, err, height, started)
			return err
		}
		if err := s.ingest(ctx, modeCatchup, block, started); err != nil {
			return err
		}
	}
}

// catchupPrefetch fetches and prepares rounds of blocks concurrently up to the node's
// current tip and commits each round in height order.
func (s *Service) catchupPrefetch(ctx context.Context) error {
	batch := uint64(s.prefetchWorkers * prefetchBatchPerWorker)

	for {
		tip, err := s.source.LatestHeight(ctx)
		if err != nil {
			return fmt.Errorf("latest height: %w", err)
		}
		next := s.nextHeight()
		if next > tip {
			return nil
		}

		end := min(tip, next+batch-1)
		heights := make([]uint64, 0, end-next+1)
		for h := next; h <= end; h++ {
			heights = append(heights, h)
		}

		started := time.Now()
		blocks, err := workerpool.Map(ctx, s.prefetchWorkers, heights, s.fetchByHeight)
		if errors.Is(err, chain.ErrHeightNotFound) {
			// The tip moved back; finish sequentially.
			return nil
		}
		if err != nil {
			return err
		}

		for _, block := range blocks {
			if err := s.ingest(ctx, modeCatchup, block, started); err != nil {
				return err
			}
		}
	}
}

// fetchByHeight fetches, decodes and prepares the block at height.
func (s *Service) fetchByHeight(ctx context.Context, height uint64) (*model.Block, error) {
	block, err := s.source.BlockByHeight(ctx, height)
	if err != nil {
		return nil, err
	}
	if err := s.pipeline.prepare(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// ingest commits a prepared block and advances the cursor.
func (s *Service) ingest(ctx context.Context, mode string, block *model.Block, started time.Time) (err error) {
	defer func() {
		s.metrics.ObserveProcessHeight(mode, err, block.Height, started)
	}()

	if want := s.nextHeight(); block.Height != want {
		return fmt.Errorf("block %s has height %d, expected %d", block.Hash, block.Height, want)
	}
	if err = s.pipeline.commit(ctx, block); err != nil {
		return err
	}

	s.top, s.hasTop = block.Height, true
	if mode == modeListen || block.Height%catchupLogInterval == 0 {
		s.logger.Info("block ingested",
			zap.String("mode", mode),
			zap.Uint64("height", block.Height),
			zap.String("hash", block.Hash),
		)
	}
	return nil
}

func (s *Service) listen(ctx context.Context) error {
	notifications, err := s.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to block feed: %w", err)
	}
	s.metrics.SetMode(modeListen)
	s.logger.Info("listening for new blocks", zap.Uint64("next", s.nextHeight()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return errors.New("block feed closed")
			}
			if err := s.handleNotification(ctx, n); err != nil {
				return err
			}
		}
	}
}

func (s *Service) handleNotification(ctx context.Context, n model.BlockNotification) error {
	if n.Err != nil {
		return fmt.Errorf("block feed: %w", n.Err)
	}
	if s.window.Contains(n.Hash) {
		s.metrics.ObserveDuplicate()
		s.logger.Debug("block already processed", zap.String("hash", n.Hash))
		return nil
	}

	started := time.Now()
	block, err := s.source.BlockByHash(ctx, n.Hash)
	if err != nil {
		return err
	}

	if s.hasTop && block.Height <= s.top {
		s.logger.Info("pushed block already stored",
			zap.Uint64("height", block.Height),
			zap.String("hash", block.Hash),
		)
	} else {
		for next := s.nextHeight(); next < block.Height; next = s.nextHeight() {
			s.logger.Info("filling gap before pushed block", zap.Uint64("height", next), zap.Uint64("pushed", block.Height))
			gapStarted := time.Now()
			gapBlock, err := s.fetchByHeight(ctx, next)
			if err != nil {
				s.metrics.ObserveProcessHeight(modeListen, err, next, gapStarted)
				return err
			}
			if err := s.ingest(ctx, modeListen, gapBlock, gapStarted); err != nil {
				return err
			}
		}

		if err := s.pipeline.prepare(ctx, block); err != nil {
			s.metrics.ObserveProcessHeight(modeListen, err, block.Height, started)
			return err
		}
		if err := s.ingest(ctx, modeListen, block, started); err != nil {
			return err
		}
	}

	s.window.Insert(n.Hash)
	if err := s.repo.SaveProcessedBlocksWindow(ctx, s.window.Hashes()); err != nil {
		return fmt.Errorf("save processed blocks window: %w", err)
	}
	return nil
}
