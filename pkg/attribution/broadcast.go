package attribution

import (
	"context"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/broadcaster"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
)

// DeepLinkMessage is the payload published for direct-link deliveries.
type DeepLinkMessage struct {
	URL  string           `json:"url"`
	Data *domain.LinkData `json:"data"`
}

// DeferredMessage is the payload published for deferred deliveries.
type DeferredMessage struct {
	Data *domain.LinkData `json:"data"`
}

// BroadcastListener forwards deliveries to a broadcaster, such as a message
// queue sink. Broadcast failures are logged and dropped.
type BroadcastListener struct {
	target broadcaster.Broadcaster
	logger logger.Logger
}

var (
	_ DeepLinkListener = (*BroadcastListener)(nil)
	_ DeferredListener = (*BroadcastListener)(nil)
)

// NewBroadcastListener wraps target. A nil target discards events.
func NewBroadcastListener(target broadcaster.Broadcaster, lgr logger.Logger) *BroadcastListener {
	if target == nil {
		target = &broadcaster.Nop{}
	}
	return &BroadcastListener{target: target, logger: logger.Component(lgr, "attribution.broadcast")}
}

func (b *BroadcastListener) OnDeepLink(ctx context.Context, url string, data *domain.LinkData) {
	key := ""
	if data != nil {
		key = data.ShortCode
	}
	b.publish(ctx, broadcaster.Event{
		Topic:   broadcaster.TopicDeepLink,
		Key:     key,
		Payload: DeepLinkMessage{URL: url, Data: data},
	})
}

func (b *BroadcastListener) OnDeferredDeepLink(ctx context.Context, data *domain.LinkData) {
	key := ""
	if data != nil {
		key = data.ShortCode
	}
	b.publish(ctx, broadcaster.Event{
		Topic:   broadcaster.TopicDeferredDeepLink,
		Key:     key,
		Payload: DeferredMessage{Data: data},
	})
}

func (b *BroadcastListener) publish(ctx context.Context, evt broadcaster.Event) {
	if err := b.target.Broadcast(ctx, evt); err != nil {
		b.logger.Warn("broadcast failed",
			logger.Field{Key: "topic", Value: evt.Topic},
			logger.Field{Key: "error", Value: err},
		)
	}
}
