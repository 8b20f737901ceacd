package session

import (
	"context"
	"fmt"

	"github.com/yndnr/cmsadmin/pkg/crypto/adaptive"
)

// EncryptedStorage seals values before handing them to the wrapped Storage.
// The key name is bound as additional data so values cannot be swapped
// between keys.
type EncryptedStorage struct {
	next   Storage
	cipher adaptive.Cipher
}

// NewEncryptedStorage wraps next with c.
func NewEncryptedStorage(next Storage, c adaptive.Cipher) *EncryptedStorage {
	return &EncryptedStorage{next: next, cipher: c}
}

// Get opens the stored value for key.
func (e *EncryptedStorage) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := e.cipher.Decrypt(sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w: %w", key, ErrUnreadable, err)
	}
	return plain, nil
}

// Put seals every entry and writes them in one call.
func (e *EncryptedStorage) Put(ctx context.Context, entries map[string][]byte) error {
	sealed := make(map[string][]byte, len(entries))
	for k, v := range entries {
		ct, err := e.cipher.Encrypt(v, []byte(k))
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", k, err)
		}
		sealed[k] = ct
	}
	return e.next.Put(ctx, sealed)
}

func (e *EncryptedStorage) Delete(ctx context.Context, keys ...string) error {
	return e.next.Delete(ctx, keys...)
}

func (e *EncryptedStorage) Close() error {
	return e.next.Close()
}
