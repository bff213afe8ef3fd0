// Package redisstore keeps SDK state in Redis for server-side hosts that run
// several processes against one install identity.
package redisstore

import (
	"context"
	"errors"

	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
	"github.com/redis/go-redis/v9"
)

// KVStore maps keys onto plain Redis strings under an optional prefix.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

var _ store.KV = (*KVStore)(nil)

func NewKVStore(client redis.UniversalClient, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Ping checks connectivity.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
