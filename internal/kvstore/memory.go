package kvstore

import (
	"context"
	"strings"
	"sync"

	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

// InMemoryStore implements kvstore.Store with a map. Values are copied on
// the way in and out so callers never share a backing array with the store.
// It is safe for concurrent use.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// Ensure InMemoryStore implements kvstore.Store
var _ kvstore.Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value at key.
func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkCall(ctx, key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, kvstore.ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value at key.
func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kvstore.ErrClosed
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key.
func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kvstore.ErrClosed
	}
	delete(s.values, key)
	return nil
}

// Close drops all values. Further calls fail with kvstore.ErrClosed.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.values = nil
	return nil
}

func checkCall(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return kvstore.ErrKeyRequired
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}
