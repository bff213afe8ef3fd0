package memory

import (
	"context"
	"sync"

	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
)

// KVStore keeps values in a map for the lifetime of the process.
type KVStore struct {
	mu      sync.RWMutex
	records map[string]string
}

var _ store.KV = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{records: make(map[string]string)}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len returns the number of stored keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
