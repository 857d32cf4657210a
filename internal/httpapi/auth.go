package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mrussa/order-bridge/internal/respond"
)

const bearerPrefix = "Bearer "

// requireAuth gates a handler behind the shared bearer token. An empty
// configured token disables the check (local development and tests).
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.token == "" {
			next(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, bearerPrefix) {
			respond.Unauthorized(w, "missing bearer token")
			return
		}
		got := strings.TrimPrefix(h, bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) != 1 {
			respond.Unauthorized(w, "invalid token")
			return
		}
		next(w, r)
	}
}
