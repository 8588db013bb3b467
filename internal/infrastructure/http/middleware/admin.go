package middleware

import (
	"crypto/subtle"
	"net/http"
)

const adminSecretHeader = "X-Crewrelief-Admin-Secret"

// RequireAdminSecret returns a middleware that requires X-Crewrelief-Admin-Secret to match the given secret.
// If secret is empty, all requests are rejected with 401.
func RequireAdminSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeErr(w, http.StatusUnauthorized, "unauthorized", "admin API not configured (ADMIN_SECRET)")
				return
			}
			if subtle.ConstantTimeCompare([]byte(r.Header.Get(adminSecretHeader)), []byte(secret)) != 1 {
				writeErr(w, http.StatusUnauthorized, "unauthorized", "invalid or missing admin secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
