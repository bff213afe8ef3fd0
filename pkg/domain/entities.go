package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across persisted entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// KVEntry is a single key/value pair persisted by the SQL-backed store.
type KVEntry struct {
	bun.BaseModel `bun:"table:linkforty_kv,alias:kv"`
	RecordMeta

	Key   string `bun:",notnull,unique" json:"key"`
	Value string `bun:",notnull" json:"value"`
}
