package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// InMemory is an in-memory implementation of Store.
type InMemory struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewInMemory creates a new empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{values: make(map[string]any)}
}

func (s *InMemory) Get(_ context.Context, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return value, nil
}

func (s *InMemory) Set(_ context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

func (s *InMemory) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *InMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
	return nil
}
