// Package cart resolves the shopper's current cart. Carts are
// session-scoped and short-lived, so the production store keeps them
// in Redis under the session key.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"merx/internal/criteria"
)

const keyPrefix = "cart:"

// RedisStore implements criteria.CartStore on Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed cart store. Carts expire after
// ttl of inactivity.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the session's cart, or (nil, nil) when there is none.
func (s *RedisStore) Get(ctx context.Context, sessionKey string) (*criteria.Cart, error) {
	if sessionKey == "" {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %q: %w", sessionKey, err)
	}

	var cart criteria.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %q: %w", sessionKey, err)
	}
	return &cart, nil
}

// Put stores the session's cart and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, cart *criteria.Cart) error {
	if cart == nil || cart.SessionKey == "" {
		return fmt.Errorf("cart with session key is required")
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %q: %w", cart.SessionKey, err)
	}
	if err := s.client.Set(ctx, keyPrefix+cart.SessionKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("put cart %q: %w", cart.SessionKey, err)
	}
	return nil
}

// Delete drops the session's cart.
func (s *RedisStore) Delete(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionKey).Err(); err != nil {
		return fmt.Errorf("delete cart %q: %w", sessionKey, err)
	}
	return nil
}
