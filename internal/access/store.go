package access

import (
	"context"
	"maps"
	"sync"
)

// Store is a key-value string store holding session and user flag hashes.
// Load of a missing key returns an empty map and no error.
type Store interface {
	Load(ctx context.Context, key string) (map[string]string, error)
	// Save merges fields into the hash at key.
	Save(ctx context.Context, key string, fields map[string]string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps hashes in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data[key]
	if !ok {
		return map[string]string{}, nil
	}
	return maps.Clone(h), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.data[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.data[key] = h
	}
	maps.Copy(h, fields)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
