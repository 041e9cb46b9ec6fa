package testutil

import (
	"net/http"
	"time"

	"merx/pkg/domain"
	"merx/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the actor middleware would do for authenticated
// requests. If the userID is not a valid UUID, it is not added.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := domain.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithSessionKey adds an anonymous shopper's session key to the
// request context.
func WithSessionKey(req *http.Request, key string) *http.Request {
	return req.WithContext(requestcontext.WithSessionKey(req.Context(), key))
}

// WithGroups adds group memberships to the request context.
// Invalid group ids are silently ignored.
func WithGroups(req *http.Request, groups ...string) *http.Request {
	parsed := make([]domain.GroupID, 0, len(groups))
	for _, g := range groups {
		group, err := domain.ParseGroupID(g)
		if err != nil {
			continue
		}
		parsed = append(parsed, group)
	}
	return req.WithContext(requestcontext.WithGroups(req.Context(), parsed))
}

// WithCountry adds a delivery country to the request context.
func WithCountry(req *http.Request, code string) *http.Request {
	parsed, err := domain.ParseCountryCode(code)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCountry(req.Context(), parsed))
}

// WithFrozenTime freezes the request time, making time-criterion
// evaluations deterministic.
func WithFrozenTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
