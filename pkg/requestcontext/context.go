// Package requestcontext provides HTTP-independent context accessors
// for request-scoped values.
//
// Middleware sets the values; services read them. Keeping the package
// free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithUserID(ctx, userID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"merx/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey      struct{}
	sessionKeyKey  struct{}
	groupsKey      struct{}
	countryKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// UserID retrieves the authenticated user ID from the context.
// Returns the zero value (anonymous) if not set.
func UserID(ctx context.Context) domain.UserID {
	if userID, ok := ctx.Value(userIDKey{}).(domain.UserID); ok {
		return userID
	}
	return ""
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// SessionKey retrieves the shopper's session key from the context.
func SessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(sessionKeyKey{}).(string); ok {
		return key
	}
	return ""
}

// WithSessionKey injects a session key into the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyKey{}, key)
}

// Groups retrieves the actor's group memberships from the context.
func Groups(ctx context.Context) []domain.GroupID {
	if groups, ok := ctx.Value(groupsKey{}).([]domain.GroupID); ok {
		return groups
	}
	return nil
}

// WithGroups injects group memberships into the context.
func WithGroups(ctx context.Context, groups []domain.GroupID) context.Context {
	return context.WithValue(ctx, groupsKey{}, groups)
}

// Country retrieves the delivery country from the context.
func Country(ctx context.Context) domain.CountryCode {
	if country, ok := ctx.Value(countryKey{}).(domain.CountryCode); ok {
		return country
	}
	return ""
}

// WithCountry injects a delivery country into the context.
func WithCountry(ctx context.Context, country domain.CountryCode) context.Context {
	return context.WithValue(ctx, countryKey{}, country)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the frozen request time when one was injected, else the
// wall clock. The time criterion reads this, which keeps its tests
// deterministic.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime freezes the request time in the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
