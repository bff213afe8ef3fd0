package broadcaster

import "context"

// Topics published by the SDK.
const (
	TopicDeepLink         = "linkforty.deeplink"
	TopicDeferredDeepLink = "linkforty.deferred_deeplink"
)

// Event carries an attribution payload destined for an external sink.
type Event struct {
	Topic   string
	Key     string
	Payload any
}

// Broadcaster pushes attribution events to queues, webhooks or log sinks.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(ctx context.Context, event Event) error { return nil }
