// Package store provides generic dao.Service implementations backed by
// memory or by afs JSON documents.
package store

import (
	"context"
	"sync"

	"github.com/viant/fairsim/service/dao"
)

// Matcher reports whether an entity satisfies a list parameter.
type Matcher[T any] func(t *T, parameter *dao.Parameter) bool

// MemoryStore is a generic in-memory implementation of dao.Service. Entities
// are keyed by the value returned from keySelector.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	matcher     Matcher[T]
}

// NewMemoryStore creates a new MemoryStore. A nil matcher ignores list parameters.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K, matcher Matcher[T]) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
		matcher:     matcher,
	}
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// List returns stored records matching every parameter, in no particular order.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
outer:
	for _, v := range s.records {
		if s.matcher != nil {
			for _, parameter := range parameters {
				if !s.matcher(v, parameter) {
					continue outer
				}
			}
		}
		out = append(out, v)
	}
	return out, nil
}
