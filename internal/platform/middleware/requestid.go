package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"merx/pkg/requestcontext"
)

// HeaderRequestID echoes the correlation id back to the client.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns every request a correlation id, honoring one the
// client already sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
