package http

import (
	"context"
	"net/http"
	"strings"

	"pocketpal/internal/core"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// authenticated resolves the bearer token to a user and stores it on
// the request context. Missing or stale tokens get a 401.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		u, err := s.sessions.Restore(r.Context(), token)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, u)
		next(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

// requestUser returns the user attached by the authenticated wrapper.
func requestUser(r *http.Request) *core.User {
	u, _ := r.Context().Value(userContextKey).(*core.User)
	return u
}
