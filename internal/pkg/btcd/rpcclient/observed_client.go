// Package rpcclient instruments the btcd JSON-RPC client for use against a ghostd node.
package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// Client is implemented by *rpcclient.Client.
	Client interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		RawRequest(method string, params []json.RawMessage) (json.RawMessage, error)
	}
)

const (
	retryInitialInterval = 250 * time.Millisecond
	retryMaxInterval     = 10 * time.Second
)

// Config holds connection settings for a ghostd node.
type Config struct {
	URL      string
	User     string
	Password string
	// RPS limits outgoing calls per second; zero disables the limit.
	RPS     int
	Retries uint64
}

// ObservedClient records metrics for every call, throttles calls and retries transport failures.
// Errors answered by the node are returned as is.
type ObservedClient struct {
	client     Client
	rpcMetrics RPCMetrics
	limiter    ratelimit.Limiter
	retries    uint64
	newBackOff func() backoff.BackOff
	shutdown   func()
	logger     *zap.Logger
}

// New connects to a ghostd node in HTTP POST mode.
func New(cfg Config, rpcMetrics RPCMetrics, logger *zap.Logger) (*ObservedClient, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         cfg.User,
		Pass:         cfg.Password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
	if err != nil {
		return nil, err
	}
	observed := NewObservedClient(client, rpcMetrics, cfg.RPS, cfg.Retries, logger)
	observed.shutdown = func() {
		client.Shutdown()
		client.WaitForShutdown()
	}
	return observed, nil
}

// Shutdown stops the underlying connection, if the client owns one.
func (r *ObservedClient) Shutdown() {
	if r.shutdown != nil {
		r.shutdown()
	}
}

func NewObservedClient(client Client, rpcMetrics RPCMetrics, rps int, retries uint64, logger *zap.Logger) *ObservedClient {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
		limiter:    limiter,
		retries:    retries,
		newBackOff: newExponentialBackOff,
		logger:     logger,
	}
}

func (r *ObservedClient) GetBlockCount(ctx context.Context) (count int64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_count", err, started)
	}()
	err = r.call(ctx, "get_block_count", func() error {
		var callErr error
		count, callErr = r.client.GetBlockCount()
		return callErr
	})
	return count, err
}

func (r *ObservedClient) GetBlockHash(ctx context.Context, blockHeight int64) (hash *chainhash.Hash, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("get_block_hash", err, started)
	}()
	err = r.call(ctx, "get_block_hash", func() error {
		var callErr error
		hash, callErr = r.client.GetBlockHash(blockHeight)
		return callErr
	})
	return hash, err
}

func (r *ObservedClient) RawRequest(ctx context.Context, method string, params []json.RawMessage) (res json.RawMessage, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe(method, err, started)
	}()
	err = r.call(ctx, method, func() error {
		var callErr error
		res, callErr = r.client.RawRequest(method, params)
		return callErr
	})
	return res, err
}

func (r *ObservedClient) call(ctx context.Context, operation string, fn func() error) error {
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		r.limiter.Take()
		err := fn()
		if err == nil {
			return nil
		}
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		r.logger.Warn("rpc call failed, retrying",
			zap.String("operation", operation),
			zap.Duration("next", next),
			zap.Error(err),
		)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.retries), ctx)
	return backoff.RetryNotify(op, policy, notify)
}

func newExponentialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0
	return b
}
