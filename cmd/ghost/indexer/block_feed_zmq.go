//go:build zmq

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/clock"
	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

const (
	zmqRecvTimeout    = time.Second
	zmqRecvErrorPause = time.Second
)

type zmqBlockFeed struct {
	addr          string
	maxRecvErrors int
	logger        *zap.Logger
}

func newBlockFeed(addr string, maxRecvErrors int, logger *zap.Logger) *zmqBlockFeed {
	return &zmqBlockFeed{addr: addr, maxRecvErrors: maxRecvErrors, logger: logger}
}

// Subscribe connects to the hashblock publisher. The returned channel is closed when ctx is done;
// a terminal failure is delivered as a notification carrying Err.
func (f *zmqBlockFeed) Subscribe(ctx context.Context) (<-chan model.BlockNotification, error) {
	if f.addr == "" {
		return nil, errors.New("zmq address is required")
	}

	sub, err := newSubscriber(f.addr, hashBlockTopic)
	if err != nil {
		return nil, fmt.Errorf("connect zmq: %w", err)
	}

	out := make(chan model.BlockNotification)
	go func() {
		defer close(out)
		defer sub.Close()

		seq := &sequenceTracker{logger: f.logger}
		recvErrors := 0
		for ctx.Err() == nil {
			parts, err := sub.RecvMessageBytes(0)
			if err != nil {
				if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
					continue
				}
				recvErrors++
				f.logger.Warn("zmq recv failed", zap.Int("consecutive", recvErrors), zap.Error(err))
				if recvErrors > f.maxRecvErrors {
					f.send(ctx, out, model.BlockNotification{Err: fmt.Errorf("zmq recv failed %d times: %w", recvErrors, err)})
					return
				}
				if err := clock.SleepWithContext(ctx, zmqRecvErrorPause); err != nil {
					return
				}
				continue
			}
			recvErrors = 0

			n, err := parseHashBlock(parts)
			if err != nil {
				f.logger.Warn("skip malformed zmq message", zap.Int("parts", len(parts)), zap.Error(err))
				continue
			}
			seq.observe(n.Sequence)

			if !f.send(ctx, out, n) {
				return
			}
		}
	}()

	f.logger.Info("subscribed to block feed", zap.String("addr", f.addr))
	return out, nil
}

func (f *zmqBlockFeed) send(ctx context.Context, out chan<- model.BlockNotification, n model.BlockNotification) bool {
	select {
	case out <- n:
		return true
	case <-ctx.Done():
		return false
	}
}

func newSubscriber(addr string, topics ...string) (*zmq4.Socket, error) {
	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, err
	}

	if err := sub.SetRcvtimeo(zmqRecvTimeout); err != nil {
		sub.Close()
		return nil, err
	}
	for _, topic := range topics {
		if err := sub.SetSubscribe(topic); err != nil {
			sub.Close()
			return nil, err
		}
	}

	if err := sub.Connect(addr); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}
