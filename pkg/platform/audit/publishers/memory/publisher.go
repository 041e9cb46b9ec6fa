// Package memory provides an in-memory audit publisher for unit
// tests and for running without a Kafka cluster.
package memory

import (
	"context"
	"sync"

	audit "merx/pkg/platform/audit"
)

type Publisher struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of every emitted event, in order.
func (p *Publisher) Events() []audit.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]audit.Event{}, p.events...)
}

func (p *Publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
