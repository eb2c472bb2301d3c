package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// AddressResolver resolves a stake address to its stake-only form.
	AddressResolver interface {
		ValidateAddress(ctx context.Context, address string) (string, error)
	}
)

// Attributor maps a block's stake address to a known pool.
type Attributor struct {
	resolver AddressResolver
	table    *Table
	cache    *ttlcache.Cache[string, string]
	logger   *zap.Logger
}

// NewAttributor builds an Attributor whose validateaddress results are cached for ttl,
// holding at most capacity entries.
func NewAttributor(resolver AddressResolver, table *Table, ttl time.Duration, capacity uint64, logger *zap.Logger) *Attributor {
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithCapacity[string, string](capacity),
	)
	return &Attributor{
		resolver: resolver,
		table:    table,
		cache:    cache,
		logger:   logger,
	}
}

// Start runs the cache janitor until Stop is called.
func (a *Attributor) Start() {
	go a.cache.Start()
}

// Stop stops the cache janitor.
func (a *Attributor) Stop() {
	a.cache.Stop()
}

// Attribute returns the pool staking to stakeAddress, or nil when the address belongs to no known pool.
func (a *Attributor) Attribute(ctx context.Context, stakeAddress string) (*model.Pool, error) {
	if stakeAddress == "" {
		return nil, nil
	}

	stakeOnly, err := a.stakeOnlyAddress(ctx, stakeAddress)
	if err != nil {
		return nil, err
	}

	p, ok := a.table.Lookup(stakeOnly)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (a *Attributor) stakeOnlyAddress(ctx context.Context, stakeAddress string) (string, error) {
	if item := a.cache.Get(stakeAddress); item != nil {
		return item.Value(), nil
	}

	stakeOnly, err := a.resolver.ValidateAddress(ctx, stakeAddress)
	if err != nil {
		return "", fmt.Errorf("resolve stake address %s: %w", stakeAddress, err)
	}
	if stakeOnly == "" {
		a.logger.Debug("address has no stake-only form", zap.String("address", stakeAddress))
	}

	a.cache.Set(stakeAddress, stakeOnly, ttlcache.DefaultTTL)
	return stakeOnly, nil
}
