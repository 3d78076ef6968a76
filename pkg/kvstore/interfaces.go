package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrKeyRequired is returned when an empty key is provided
	ErrKeyRequired = errors.New("key cannot be empty")
	// ErrClosed is returned when a closed store is used
	ErrClosed = errors.New("store is closed")
)

// Store defines get/set access by key. Implementations are safe for
// concurrent use.
type Store interface {
	io.Closer

	// Get returns the value stored at key. The bool is false when the key
	// does not exist; that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value at key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value at key into out. It reports false when the key
// does not exist.
func LoadJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes value and stores it at key.
func SaveJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
