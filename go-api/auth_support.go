package main

import (
	"context"
	"errors"
	"net/http"
)

// ContextKey is a custom type to avoid context key collisions.
type ContextKey string

// IdentityKey holds the verified Identity of the caller.
const IdentityKey ContextKey = "identity"

// requireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			if !errors.Is(err, ErrMissingToken) {
				s.log.Debug("token rejected", "err", err, "path", r.URL.Path)
			}
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}
