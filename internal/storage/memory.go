package storage

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. Used by tests and as a scratch backend.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the value for key, with found=false when absent.
func (s *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *MemStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
