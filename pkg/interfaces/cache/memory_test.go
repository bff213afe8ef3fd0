package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "fp", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := c.Get(ctx, "fp"); !ok || v != "value" {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "fp"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryNoTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	_ = c.Set(ctx, "k", 1, 0)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected entry without ttl to persist")
	}
	_ = c.Delete(ctx, "k")
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to be deleted")
	}
}
