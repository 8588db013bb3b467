package ports

import (
	"context"
	"time"
)

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AccessClaims is what the API needs from a validated bearer token.
// External is set for tokens minted by an outside OIDC issuer.
type AccessClaims struct {
	UserID    string
	TokenID   string
	Email     string
	ExpiresAt time.Time
	External  bool
}

// TokenIssuer signs access tokens (RS256).
type TokenIssuer interface {
	IssueAccessToken(userID, email string, expiresInSeconds int64) (token string, claims AccessClaims, err error)
}

// TokenValidator checks a bearer token. Several validators may be chained
// (locally issued JWTs, an external OIDC issuer).
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (AccessClaims, error)
}

// RevocationStore remembers signed-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
