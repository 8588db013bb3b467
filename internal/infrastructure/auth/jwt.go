package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// TokenIssuer signs and validates RS256 access tokens for locally registered users.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		audience:   audience,
	}
}

func (t *TokenIssuer) IssueAccessToken(userID, email string, expiresInSeconds int64) (string, ports.AccessClaims, error) {
	now := time.Now()
	exp := now.Add(time.Duration(expiresInSeconds) * time.Second)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Email:  email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.privateKey)
	if err != nil {
		return "", ports.AccessClaims{}, err
	}
	return signed, ports.AccessClaims{UserID: userID, TokenID: claims.ID, Email: email, ExpiresAt: exp}, nil
}

func (t *TokenIssuer) ValidateAccessToken(_ context.Context, tokenString string) (ports.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.publicKey, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithAudience(t.audience), jwt.WithExpirationRequired())
	if err != nil {
		return ports.AccessClaims{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return ports.AccessClaims{}, domerrors.ErrInvalidToken
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return ports.AccessClaims{}, errors.New("token has no subject")
	}
	out := ports.AccessClaims{UserID: userID, TokenID: claims.ID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

var (
	_ ports.TokenIssuer    = (*TokenIssuer)(nil)
	_ ports.TokenValidator = (*TokenIssuer)(nil)
)
