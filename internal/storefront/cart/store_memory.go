package cart

import (
	"context"
	"sync"

	"merx/internal/criteria"
)

// InMemoryStore implements criteria.CartStore for unit tests and for
// running without Redis.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*criteria.Cart
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{carts: make(map[string]*criteria.Cart)}
}

func (s *InMemoryStore) Get(_ context.Context, sessionKey string) (*criteria.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionKey]
	if !ok {
		return nil, nil
	}
	// Copy so callers can't mutate the stored cart.
	out := &criteria.Cart{SessionKey: cart.SessionKey, Lines: append([]criteria.CartLine{}, cart.Lines...)}
	return out, nil
}

func (s *InMemoryStore) Put(_ context.Context, cart *criteria.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionKey] = &criteria.Cart{
		SessionKey: cart.SessionKey,
		Lines:      append([]criteria.CartLine{}, cart.Lines...),
	}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionKey)
	return nil
}
