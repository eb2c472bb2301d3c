// Package kafka publishes ingested blocks and newly detected proposals to Kafka.
package kafka

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
)

type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Config describes the Kafka cluster and topics.
type Config struct {
	Brokers       []string
	BlockTopic    string
	ProposalTopic string
}

// NewClient builds a franz-go client whose default topic is the block topic.
func NewClient(cfg Config, metricsNamespace string) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	m := kprom.NewMetrics(metricsNamespace,
		kprom.Registerer(prometheus.DefaultRegisterer),
		kprom.Gatherer(prometheus.DefaultGatherer))

	client, err := kgo.NewClient(
		kgo.WithHooks(m),
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.BlockTopic),
		kgo.ProducerBatchCompression(kgo.ZstdCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Producer writes one record per block to the default topic and one per proposal to the proposal topic.
type Producer struct {
	kcl           syncProducer
	network       model.Network
	proposalTopic string
}

func NewProducer(client syncProducer, network model.Network, proposalTopic string) *Producer {
	return &Producer{kcl: client, network: network, proposalTopic: proposalTopic}
}

// PublishBlock produces the block keyed by its height.
func (p *Producer) PublishBlock(ctx context.Context, block *model.Block) error {
	payload, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshal block %d: %w", block.Height, err)
	}

	record := &kgo.Record{Key: uint64Key(block.Height), Value: payload, Headers: p.headers("block")}
	if err := p.kcl.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce block %d: %w", block.Height, err)
	}
	return nil
}

// PublishProposal produces the proposal keyed by its id.
func (p *Producer) PublishProposal(ctx context.Context, proposal model.Proposal) error {
	payload, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("marshal proposal %d: %w", proposal.ID, err)
	}

	record := &kgo.Record{
		Topic:   p.proposalTopic,
		Key:     uint64Key(proposal.ID),
		Value:   payload,
		Headers: p.headers("proposal"),
	}
	if err := p.kcl.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce proposal %d: %w", proposal.ID, err)
	}
	return nil
}

func (p *Producer) headers(kind string) []kgo.RecordHeader {
	return []kgo.RecordHeader{
		{Key: "network", Value: []byte(p.network)},
		{Key: "kind", Value: []byte(kind)},
	}
}

func uint64Key(v uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, v)
	return key
}
