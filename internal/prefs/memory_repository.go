package prefs

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production uses SQLiteRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryRepository creates an in-memory prefs repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		values: make(map[string][]byte),
	}
}

// Get returns the stored value for key.
func (r *InMemoryRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return nil, false, nil
	}

	// Return a copy
	cpy := make([]byte, len(v))
	copy(cpy, v)
	return cpy, true, nil
}

// Set stores a value for key.
func (r *InMemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := make([]byte, len(value))
	copy(cpy, value)
	r.values[key] = cpy
	return nil
}

// Delete removes a key.
func (r *InMemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}
