package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/ghostd"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/governance"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/pool"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/publisher/kafka"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/repository/clickhouse"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/service/ingester"
	"github.com/goodnatureofminers/ghost-indexer/internal/metrics"
	"github.com/goodnatureofminers/ghost-indexer/internal/pkg/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	ClickhouseDSN      string        `long:"clickhouse-dsn" env:"GHOST_INDEXER_CLICKHOUSE_DSN" description:"ClickHouse DSN" required:"true"`
	Network            model.Network `long:"network" env:"GHOST_INDEXER_NETWORK" description:"network name" choice:"mainnet" choice:"testnet" default:"mainnet"`
	RPCURL             string        `long:"rpc-url" env:"GHOST_INDEXER_RPC_URL" description:"ghostd RPC URL" default:"http://127.0.0.1:51725"`
	RPCUser            string        `long:"rpc-user" env:"GHOST_INDEXER_RPC_USER" description:"ghostd RPC username"`
	RPCPassword        string        `long:"rpc-password" env:"GHOST_INDEXER_RPC_PASSWORD" description:"ghostd RPC password"`
	RPCRPS             int           `long:"rpc-rps" env:"GHOST_INDEXER_RPC_RPS" description:"max RPC calls per second, 0 for unlimited" default:"0"`
	RPCRetries         uint64        `long:"rpc-retries" env:"GHOST_INDEXER_RPC_RETRIES" description:"retries for failed RPC transport calls" default:"5"`
	ZMQAddr            string        `long:"zmq-addr" env:"GHOST_INDEXER_ZMQ_ADDR" description:"ghostd ZMQ hashblock endpoint" default:"tcp://127.0.0.1:28332"`
	ZMQMaxRecvErrors   int           `long:"zmq-max-recv-errors" env:"GHOST_INDEXER_ZMQ_MAX_RECV_ERRORS" description:"consecutive ZMQ receive errors tolerated before stopping" default:"10"`
	MetricsAddr        string        `long:"metrics-addr" env:"GHOST_INDEXER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	PrefetchWorkers    int           `long:"prefetch-workers" env:"GHOST_INDEXER_PREFETCH_WORKERS" description:"concurrent block fetchers during catchup" default:"1"`
	AddressCacheTTL    time.Duration `long:"address-cache-ttl" env:"GHOST_INDEXER_ADDRESS_CACHE_TTL" description:"stake address resolution cache TTL" default:"1h"`
	AddressCacheSize   uint64        `long:"address-cache-size" env:"GHOST_INDEXER_ADDRESS_CACHE_SIZE" description:"stake address resolution cache capacity" default:"10000"`
	KafkaBrokers       []string      `long:"kafka-brokers" env:"GHOST_INDEXER_KAFKA_BROKERS" env-delim:"," description:"Kafka seed brokers, publishing is disabled when empty"`
	KafkaBlockTopic    string        `long:"kafka-block-topic" env:"GHOST_INDEXER_KAFKA_BLOCK_TOPIC" description:"topic for ingested blocks" default:"ghost-blocks"`
	KafkaProposalTopic string        `long:"kafka-proposal-topic" env:"GHOST_INDEXER_KAFKA_PROPOSAL_TOPIC" description:"topic for new proposals" default:"ghost-proposals"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("ghost indexer failed", zap.Error(err))
	}
	logger.Info("ghost indexer stopped")
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, cfg.Network, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("close repository", zap.Error(err))
		}
	}()

	rpc, err := rpcclient.New(rpcclient.Config{
		URL:      cfg.RPCURL,
		User:     cfg.RPCUser,
		Password: cfg.RPCPassword,
		RPS:      cfg.RPCRPS,
		Retries:  cfg.RPCRetries,
	}, metrics.NewRPCClient(cfg.Network), logger.Named("rpc"))
	if err != nil {
		return fmt.Errorf("init ghostd rpc client: %w", err)
	}
	defer rpc.Shutdown()

	source := ghostd.NewSource(rpc, cfg.Network)

	attributor := pool.NewAttributor(source, pool.NewTable(pool.KnownPools), cfg.AddressCacheTTL, cfg.AddressCacheSize, logger.Named("pool"))
	attributor.Start()
	defer attributor.Stop()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	feed := newBlockFeed(cfg.ZMQAddr, cfg.ZMQMaxRecvErrors, logger.Named("zmq"))

	svc, err := ingester.NewService(
		source,
		feed,
		repo,
		attributor,
		governance.NewTracker(source, logger.Named("governance")),
		publisher,
		metrics.NewIngester(cfg.Network),
		ingester.Config{Network: cfg.Network, PrefetchWorkers: cfg.PrefetchWorkers},
		logger,
	)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

func newPublisher(cfg config) (ingester.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}, nil
	}

	client, err := kafka.NewClient(kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		BlockTopic:    cfg.KafkaBlockTopic,
		ProposalTopic: cfg.KafkaProposalTopic,
	}, "ghostindexer_kafka")
	if err != nil {
		return nil, nil, err
	}
	return kafka.NewProducer(client, cfg.Network, cfg.KafkaProposalTopic), client.Close, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
