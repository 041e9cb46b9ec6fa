// Package middleware resolves the acting shopper for every request.
//
// Authenticated shoppers present a bearer token; its claims carry the
// user id, group memberships, and delivery country. Anonymous
// shoppers are identified by the X-Session-Key header, with an
// optional X-Country header for country gating. A bad token makes
// the request fail rather than silently downgrading to anonymous.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"merx/pkg/domain"
	dErrors "merx/pkg/domain-errors"
	"merx/pkg/platform/httputil"
	"merx/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the claims it
// carries. jwttoken.JWTService satisfies it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the middleware-facing view of a validated token.
type Claims struct {
	UserID  string
	Groups  []string
	Country string
}

// HeaderSessionKey identifies anonymous shoppers.
const HeaderSessionKey = "X-Session-Key"

// HeaderCountry carries the delivery country for anonymous shoppers.
const HeaderCountry = "X-Country"

// Actor populates the request context with the acting shopper.
func Actor(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "rejected bearer token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
					return
				}

				userID, err := domain.ParseUserID(claims.UserID)
				if err != nil {
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
					return
				}
				ctx = requestcontext.WithUserID(ctx, userID)
				if len(claims.Groups) > 0 {
					groups := make([]domain.GroupID, 0, len(claims.Groups))
					for _, g := range claims.Groups {
						group, err := domain.ParseGroupID(g)
						if err != nil {
							continue
						}
						groups = append(groups, group)
					}
					ctx = requestcontext.WithGroups(ctx, groups)
				}
				if claims.Country != "" {
					if country, err := domain.ParseCountryCode(claims.Country); err == nil {
						ctx = requestcontext.WithCountry(ctx, country)
					}
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if key := r.Header.Get(HeaderSessionKey); key != "" {
				ctx = requestcontext.WithSessionKey(ctx, key)
			}
			if raw := r.Header.Get(HeaderCountry); raw != "" {
				if country, err := domain.ParseCountryCode(raw); err == nil {
					ctx = requestcontext.WithCountry(ctx, country)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
