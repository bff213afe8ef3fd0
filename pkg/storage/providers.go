package storage

import (
	"context"
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	bunrepo "github.com/linkforty/go-linkforty/internal/storage/bun"
	"github.com/linkforty/go-linkforty/internal/storage/memory"
	redisstore "github.com/linkforty/go-linkforty/internal/storage/redis"
	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Storage drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Providers bundles the key/value store with the resources backing it.
type Providers struct {
	KV     store.KV
	closer func() error
}

// Close releases database or network handles opened by Open.
func (p Providers) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() store.KV {
	return memory.NewKVStore()
}

// NewBunStore wires the SQL store using go-repository-bun. The caller owns
// the *bun.DB and its schema (see Migrate).
func NewBunStore(db *bun.DB) store.KV {
	if db == nil {
		panic("storage: bun DB is required")
	}
	// Register the model so go-persistence-bun migrations can pick it up.
	persistence.RegisterModel((*domain.KVEntry)(nil))
	return bunrepo.NewKVStore(db)
}

// Migrate creates the key/value table when it does not exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*domain.KVEntry)(nil)).IfNotExists().Exec(ctx)
	return err
}

// NewRedisStore wraps a Redis client. Every key is stored under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) store.KV {
	if client == nil {
		panic("storage: redis client is required")
	}
	return redisstore.NewKVStore(client, prefix)
}

// Open builds the store selected by cfg.Storage. When an encryption key is
// configured the store is wrapped with NewEncryptedStore.
func Open(ctx context.Context, cfg config.Config) (Providers, error) {
	var providers Providers
	switch cfg.Storage.Driver {
	case "", DriverMemory:
		providers.KV = NewMemoryStore()
	case DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.DriverName(), cfg.Storage.DSN)
		if err != nil {
			return Providers{}, fmt.Errorf("storage: open sqlite: %w", err)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Providers{}, fmt.Errorf("storage: migrate: %w", err)
		}
		providers.KV = NewBunStore(db)
		providers.closer = db.Close
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisAddr, DB: cfg.Storage.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return Providers{}, fmt.Errorf("storage: redis ping: %w", err)
		}
		providers.KV = NewRedisStore(client, cfg.Storage.KeyPrefix)
		providers.closer = client.Close
	default:
		return Providers{}, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		_ = providers.Close()
		return Providers{}, err
	}
	if key != nil {
		encrypted, err := NewEncryptedStore(providers.KV, key)
		if err != nil {
			_ = providers.Close()
			return Providers{}, err
		}
		providers.KV = encrypted
	}
	return providers, nil
}
