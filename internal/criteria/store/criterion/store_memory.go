// Package criterion persists criterion instances per owning business
// object.
package criterion

import (
	"context"
	"sort"
	"sync"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// InMemoryStore implements criteria.CriterionStore with a mutex
// guarded map. Used in unit tests and when no database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	byOwner map[domain.OwnerRef][]criteria.Criterion
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byOwner: make(map[domain.OwnerRef][]criteria.Criterion)}
}

func (s *InMemoryStore) ListForOwner(_ context.Context, owner domain.OwnerRef) ([]criteria.Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.byOwner[owner]
	out := make([]criteria.Criterion, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *InMemoryStore) ReplaceForOwner(_ context.Context, owner domain.OwnerRef, set []criteria.Criterion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]criteria.Criterion, len(set))
	copy(stored, set)
	s.byOwner[owner] = stored
	return nil
}

func (s *InMemoryStore) DeleteForOwner(_ context.Context, owner domain.OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byOwner, owner)
	return nil
}
