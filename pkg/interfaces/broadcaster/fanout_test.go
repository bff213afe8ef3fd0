package broadcaster

import (
	"context"
	"errors"
	"testing"
)

func TestFanoutBroadcast(t *testing.T) {
	var received []Event
	fn := Func(func(ctx context.Context, evt Event) error {
		received = append(received, evt)
		return nil
	})
	f := NewFanout(fn, nil, fn)
	if f.Len() != 2 {
		t.Fatalf("expected nil target to be skipped, got %d sinks", f.Len())
	}
	evt := Event{Topic: TopicDeepLink, Key: "abc123", Payload: "hello"}
	if err := f.Broadcast(context.Background(), evt); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("expected event fanout to 2 sinks, got %d", len(received))
	}
	if received[0].Key != "abc123" {
		t.Fatalf("expected key to be forwarded, got %q", received[0].Key)
	}
}

func TestFanoutTopicRouting(t *testing.T) {
	var all, deferredOnly int
	f := NewFanout(Func(func(ctx context.Context, evt Event) error {
		all++
		return nil
	})).Add(Func(func(ctx context.Context, evt Event) error {
		deferredOnly++
		return nil
	}), TopicDeferredDeepLink)

	ctx := context.Background()
	_ = f.Broadcast(ctx, Event{Topic: TopicDeepLink})
	_ = f.Broadcast(ctx, Event{Topic: TopicDeferredDeepLink})

	if all != 2 {
		t.Fatalf("expected catch-all sink to see 2 events, got %d", all)
	}
	if deferredOnly != 1 {
		t.Fatalf("expected deferred sink to see 1 event, got %d", deferredOnly)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	errFirst := errors.New("sink down")
	errSecond := errors.New("timeout")
	calls := 0
	f := NewFanout(
		Func(func(ctx context.Context, evt Event) error { calls++; return errFirst }),
		Func(func(ctx context.Context, evt Event) error { calls++; return nil }),
		Func(func(ctx context.Context, evt Event) error { calls++; return errSecond }),
	)
	err := f.Broadcast(context.Background(), Event{Topic: TopicDeferredDeepLink})
	if !errors.Is(err, errFirst) || !errors.Is(err, errSecond) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected every sink invoked, got %d", calls)
	}
}

func TestNilFuncIsNoop(t *testing.T) {
	var fn Func
	if err := fn.Broadcast(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil func to be a no-op, got %v", err)
	}
}
