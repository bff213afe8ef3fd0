package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/linkforty/go-linkforty/pkg/interfaces/store"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCorruptValue is returned when a stored value cannot be decrypted.
var ErrCorruptValue = errors.New("storage: encrypted value is corrupt")

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// EncryptedStore seals values with XChaCha20-Poly1305 before handing them to
// the wrapped store. The key name is bound as additional data, so a value
// copied under another key fails to open.
type EncryptedStore struct {
	next store.KV
	aead cipherSuite
}

var _ store.KV = (*EncryptedStore)(nil)

// NewEncryptedStore wraps next using a 32-byte key.
func NewEncryptedStore(next store.KV, key []byte) (*EncryptedStore, error) {
	if next == nil {
		return nil, fmt.Errorf("encrypted store: store required")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encrypted store: key must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStore{next: next, aead: aead}, nil
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, error) {
	stored, err := s.next.Get(ctx, key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrCorruptValue
	}
	nonce, sealed := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return string(plain), nil
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.next.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
