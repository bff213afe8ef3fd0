package bunrepo

import (
	"context"
	"errors"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

// KVStore persists key/value pairs in the linkforty_kv table.
type KVStore struct {
	repo repository.Repository[*domain.KVEntry]
	db   *bun.DB
}

var _ store.KV = (*KVStore)(nil)

func NewKVStore(db *bun.DB) *KVStore {
	handlers := repository.ModelHandlers[*domain.KVEntry]{
		NewRecord: func() *domain.KVEntry { return &domain.KVEntry{} },
		GetID:     func(e *domain.KVEntry) uuid.UUID { return e.ID },
		SetID: func(e *domain.KVEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(e *domain.KVEntry) string { return e.Key },
	}
	return &KVStore{
		repo: repository.MustNewRepository[*domain.KVEntry](db, handlers),
		db:   db,
	}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.get(ctx, key)
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	entry, err := s.get(ctx, key)
	switch {
	case err == nil:
		entry.Value = value
		entry.UpdatedAt = now
		_, err = s.repo.Update(ctx, entry)
		return mapError(err)
	case errors.Is(err, store.ErrNotFound):
		entry = &domain.KVEntry{Key: key, Value: value}
		entry.EnsureID()
		entry.CreatedAt = now
		entry.UpdatedAt = now
		_, err = s.repo.Create(ctx, entry)
		return mapError(err)
	default:
		return err
	}
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*domain.KVEntry)(nil)).
		Where("? = ?", bun.Ident("key"), key).
		Exec(ctx)
	return err
}

func (s *KVStore) get(ctx context.Context, key string) (*domain.KVEntry, error) {
	entry, err := s.repo.Get(ctx, withKey(key))
	if err != nil {
		return nil, mapError(err)
	}
	return entry, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsRecordNotFound(err) {
		return store.ErrNotFound
	}
	return err
}
