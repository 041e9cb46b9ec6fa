package orders

import (
	"context"
	"sync"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// Order is the in-memory record the memory store holds. Tests seed
// these directly.
type Order struct {
	UserID     domain.UserID
	SessionKey string
	State      string
	Total      float64
	Products   []domain.ProductID
}

// InMemoryStore implements criteria.OrderStore over a slice. Intended
// for tests and running without a database.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders []Order
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Add(order Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
}

func (o Order) belongsTo(actor criteria.Actor) bool {
	if actor.Authenticated() {
		return o.UserID == actor.UserID
	}
	return o.SessionKey != "" && o.SessionKey == actor.SessionKey
}

func (o Order) contains(product domain.ProductID) bool {
	for _, p := range o.Products {
		if p == product {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) CountClosed(_ context.Context, actor criteria.Actor, product *domain.ProductID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, o := range s.orders {
		if o.State != StateClosed || !o.belongsTo(actor) {
			continue
		}
		if product != nil && !o.contains(*product) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *InMemoryStore) SumTotals(_ context.Context, actor criteria.Actor, product *domain.ProductID) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	found := false
	for _, o := range s.orders {
		if !o.belongsTo(actor) {
			continue
		}
		if product != nil && !o.contains(*product) {
			continue
		}
		total += o.Total
		found = true
	}
	if !found {
		return nil, nil
	}
	return &total, nil
}
