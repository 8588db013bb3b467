package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// WithClaims injects the validated caller into the context.
func WithClaims(ctx context.Context, claims ports.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the caller's claims; ok is false for anonymous requests.
func ClaimsFromContext(ctx context.Context) (ports.AccessClaims, bool) {
	c, ok := ctx.Value(claimsContextKey).(ports.AccessClaims)
	return c, ok && c.UserID != ""
}

// CallerID is the signed-in user's id, or the zero id.
func CallerID(ctx context.Context) domain.UserID {
	c, _ := ClaimsFromContext(ctx)
	return domain.UserID(c.UserID)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}
