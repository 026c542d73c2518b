package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/benvon/taskify/internal/identity"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// Session resolves the acting user id for a request. Callers name the user
// with the X-Session-User header; when the header is absent the persisted
// current-session pointer is consulted. The id is not verified against the
// user table; the presentation layer is trusted to authenticate first.
func Session(ids *identity.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get("X-Session-User"); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					http.Error(w, "invalid X-Session-User header", http.StatusBadRequest)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUserID(ctx, id)))
				return
			}

			session, err := ids.CurrentSession(ctx)
			if err == nil && session != nil {
				ctx = WithUserID(ctx, session.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID stores the acting user id in ctx. Exported so tests can build
// authenticated requests directly.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserIDFromContext returns the acting user id, with ok=false when no user
// is associated with the request.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}
