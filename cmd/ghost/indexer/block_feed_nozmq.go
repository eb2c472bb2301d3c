//go:build !zmq

package main

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"go.uber.org/zap"
)

type disabledBlockFeed struct{}

func newBlockFeed(string, int, *zap.Logger) disabledBlockFeed {
	return disabledBlockFeed{}
}

func (disabledBlockFeed) Subscribe(context.Context) (<-chan model.BlockNotification, error) {
	return nil, errors.New("block feed requires a build with -tags zmq")
}
