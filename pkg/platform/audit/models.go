// Package audit defines the decision audit event and the publisher
// contract. Evaluation is a pure read, so audit here is fail-open
// operational visibility: a lost event never fails the evaluation.
package audit

import (
	"context"
	"time"

	"merx/pkg/domain"
)

// Event captures one owner-level evaluation decision.
// Keep it transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	Owner     domain.OwnerRef `json:"-"`
	OwnerKind string          `json:"owner_kind"`
	OwnerID   string          `json:"owner_id"`

	// UserID is empty for anonymous shoppers.
	UserID     string `json:"user_id,omitempty"`
	SessionKey string `json:"session_key,omitempty"`

	// Subject is set when a single product was evaluated in isolation.
	Subject string `json:"subject,omitempty"`

	Valid     bool   `json:"valid"`
	RequestID string `json:"request_id,omitempty"`
}

// Publisher emits decision events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
