// Package bus fans SSE messages out across backend instances. The redis
// implementation publishes every message on one pub/sub channel and each
// instance forwards what it receives into its local hub; the local
// implementation short-circuits for single-instance deployments.
package bus

import (
	"context"

	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/sse"
)

type Bus interface {
	Publish(ctx context.Context, msg sse.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error
	Close() error
}

// NewSSEBus picks the redis bus when REDIS_ADDR is configured and falls
// back to the in-process bus otherwise.
func NewSSEBus(log *logger.Logger) (Bus, error) {
	if envutil.String("REDIS_ADDR", "") == "" {
		log.Info("REDIS_ADDR not set; using in-process SSE bus")
		return NewLocalBus(log), nil
	}
	return NewRedisBus(log)
}

type localBus struct {
	log   *logger.Logger
	onMsg func(m sse.SSEMessage)
}

func NewLocalBus(log *logger.Logger) Bus {
	return &localBus{log: log.With("service", "LocalSSEBus")}
}

func (b *localBus) Publish(ctx context.Context, msg sse.SSEMessage) error {
	if b.onMsg != nil {
		b.onMsg(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m sse.SSEMessage)) error {
	b.onMsg = onMsg
	return nil
}

func (b *localBus) Close() error { return nil }
