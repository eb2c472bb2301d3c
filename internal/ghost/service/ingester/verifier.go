package ingester

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/chain"
	"go.uber.org/zap"
)

// Verifier checks that the persisted heights form the contiguous range [min, max].
type Verifier struct {
	repo   HeightStatsReader
	logger *zap.Logger
}

func NewVerifier(repo HeightStatsReader, logger *zap.Logger) *Verifier {
	return &Verifier{repo: repo, logger: logger}
}

// Verify returns the highest persisted height. found is false when nothing is stored yet.
func (v *Verifier) Verify(ctx context.Context) (top uint64, found bool, err error) {
	stats, err := v.repo.HeightStats(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("read height stats: %w", err)
	}
	if stats.Count == 0 {
		v.logger.Info("no blocks stored yet")
		return 0, false, nil
	}
	if stats.Min != 0 {
		v.logger.Warn("lowest stored height is not genesis", zap.Uint64("min", stats.Min))
	}

	violation := &chain.InvariantViolationError{
		Min:       stats.Min,
		Max:       stats.Max,
		Count:     stats.Count,
		StoredSum: stats.Sum,
	}

	expected, ok := RangeSum(stats.Min, stats.Max)
	if !ok {
		return 0, false, fmt.Errorf("height range [%d, %d] sum overflows: %w", stats.Min, stats.Max, violation)
	}
	violation.ExpectedSum = expected

	if expected != stats.Sum || stats.Count != stats.Max-stats.Min+1 {
		return 0, false, violation
	}

	v.logger.Info("stored heights verified",
		zap.Uint64("min", stats.Min),
		zap.Uint64("max", stats.Max),
		zap.Uint64("count", stats.Count),
	)
	return stats.Max, true, nil
}

// RangeSum returns the sum of every integer in [lo, hi]; ok is false on overflow or lo > hi.
func RangeSum(lo, hi uint64) (sum uint64, ok bool) {
	if lo > hi {
		return 0, false
	}

	n := hi - lo + 1
	if n == 0 {
		// [0, MaxUint64] has 2^64 terms.
		return 0, false
	}
	ends, carry := bits.Add64(lo, hi, 0)

	var prodHi, prodLo uint64
	if n%2 == 0 {
		if carry != 0 {
			return 0, false
		}
		prodHi, prodLo = bits.Mul64(n/2, ends)
	} else {
		// n odd means lo+hi is even, so halve the 65-bit value.
		half := carry<<63 | ends>>1
		prodHi, prodLo = bits.Mul64(n, half)
	}
	if prodHi != 0 {
		return 0, false
	}
	return prodLo, true
}
