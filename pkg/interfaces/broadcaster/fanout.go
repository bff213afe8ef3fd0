package broadcaster

import (
	"context"
	"errors"
)

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

// Broadcast satisfies the Broadcaster interface.
func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type route struct {
	target Broadcaster
	topics map[string]struct{}
}

func (r route) accepts(topic string) bool {
	if len(r.topics) == 0 {
		return true
	}
	_, ok := r.topics[topic]
	return ok
}

// Fanout forwards attribution events to several sinks in registration order.
// A sink added with topics only sees events on those topics.
type Fanout struct {
	routes []route
}

// NewFanout assembles a broadcaster that sends every topic to the non-nil
// targets.
func NewFanout(targets ...Broadcaster) *Fanout {
	f := &Fanout{}
	for _, target := range targets {
		f.Add(target)
	}
	return f
}

// Add registers target for the given topics, or for all topics when none are
// given. Nil targets are ignored.
func (f *Fanout) Add(target Broadcaster, topics ...string) *Fanout {
	if target == nil {
		return f
	}
	r := route{target: target}
	if len(topics) > 0 {
		r.topics = make(map[string]struct{}, len(topics))
		for _, topic := range topics {
			r.topics[topic] = struct{}{}
		}
	}
	f.routes = append(f.routes, r)
	return f
}

// Len reports the number of registered sinks.
func (f *Fanout) Len() int { return len(f.routes) }

var _ Broadcaster = (*Fanout)(nil)

// Broadcast delivers the event to every matching sink, even after a failure,
// and joins the errors.
func (f *Fanout) Broadcast(ctx context.Context, event Event) error {
	var errs []error
	for _, r := range f.routes {
		if !r.accepts(event.Topic) {
			continue
		}
		if err := r.target.Broadcast(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
