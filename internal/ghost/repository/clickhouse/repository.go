// Package clickhouse persists Ghost blocks, proposals and ingestion state in ClickHouse.
package clickhouse

import (
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/goodnatureofminers/ghost-indexer/internal/clock"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
)

type Repository struct {
	conn    Conn
	network model.Network
	metrics Metrics
	clock   clock.Clock
}

func NewRepository(dsn string, network model.Network, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, network: network, metrics: metrics, clock: clock.UTC{}}, nil
}

func (r *Repository) now() time.Time {
	if r.clock == nil {
		return time.Now().UTC()
	}
	return r.clock.Now()
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}
