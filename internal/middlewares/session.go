package middlewares

import (
	"net/http"
	"strings"

	"github.com/exalabs/exapower/internal/session"
)

// RequireSession rejects requests while no user is logged in. The pages
// behind it show account data, so without a session there is nothing to
// serve; the client redirects to the login page on 401.
func RequireSession(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := store.Get()
			if err != nil || strings.TrimSpace(id) == "" {
				http.Error(w, "missing user session", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
