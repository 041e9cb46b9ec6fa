package catalog

import (
	"context"
	"sync"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// InMemoryStore implements criteria.CatalogStore over maps. Tests
// seed it with SeedProduct and SeedDiscount.
type InMemoryStore struct {
	mu        sync.RWMutex
	products  map[domain.ProductID]criteria.ProductInfo
	discounts map[domain.DiscountID]criteria.DiscountInfo
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		products:  make(map[domain.ProductID]criteria.ProductInfo),
		discounts: make(map[domain.DiscountID]criteria.DiscountInfo),
	}
}

func (s *InMemoryStore) SeedProduct(p criteria.ProductInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *InMemoryStore) SeedDiscount(d criteria.DiscountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[d.ID] = d
}

func (s *InMemoryStore) Products(_ context.Context, ids []domain.ProductID) (map[domain.ProductID]criteria.ProductInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.ProductID]criteria.ProductInfo, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *InMemoryStore) Discount(_ context.Context, id domain.DiscountID) (*criteria.DiscountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.discounts[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}
