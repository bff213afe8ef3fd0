package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: not found")

// KV is the string key/value persistence the SDK keeps install state in.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Nop discards writes and reports every key as missing.
type Nop struct{}

var _ KV = (*Nop)(nil)

func (n *Nop) Get(ctx context.Context, key string) (string, error) { return "", ErrNotFound }
func (n *Nop) Set(ctx context.Context, key, value string) error    { return nil }
func (n *Nop) Delete(ctx context.Context, key string) error        { return nil }

// Lookup wraps Get, translating ErrNotFound into ok=false.
func Lookup(ctx context.Context, kv KV, key string) (string, bool, error) {
	value, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
