package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// ProfileEnsurer creates the placeholder profile for identities seen for the first time.
type ProfileEnsurer interface {
	Execute(ctx context.Context, userID domain.UserID, email string) (*domain.UserProfile, error)
}

// AuthValidator validates the bearer token, rejects revoked ones and puts the
// caller's claims in the context (see ClaimsFromContext).
type AuthValidator struct {
	validator   ports.TokenValidator
	revocations ports.RevocationStore
	ensure      ProfileEnsurer
	log         zerolog.Logger
}

// NewAuthValidator builds the middleware. revocations and ensure may be nil.
func NewAuthValidator(validator ports.TokenValidator, revocations ports.RevocationStore, ensure ProfileEnsurer, log zerolog.Logger) *AuthValidator {
	return &AuthValidator{validator: validator, revocations: revocations, ensure: ensure, log: log}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "unauthorized", "not signed in")
			return
		}
		claims, err := m.validator.ValidateAccessToken(r.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil || claims.UserID == "" {
			writeErr(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}
		if m.revocations != nil && claims.TokenID != "" {
			revoked, err := m.revocations.IsRevoked(r.Context(), claims.TokenID)
			if err != nil {
				m.log.Error().Err(err).Msg("revocation lookup failed")
				writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			if revoked {
				writeErr(w, http.StatusUnauthorized, "session_revoked", "token has been revoked")
				return
			}
		}
		if claims.External && m.ensure != nil {
			if _, err := m.ensure.Execute(r.Context(), domain.UserID(claims.UserID), claims.Email); err != nil {
				m.log.Error().Err(err).Str("user_id", claims.UserID).Msg("profile bootstrap for external identity failed")
				writeErr(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
