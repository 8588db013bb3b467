package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// OIDCValidator accepts ID tokens from an external OpenID Connect issuer.
// The token subject becomes the user id.
type OIDCValidator struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCValidator discovers the issuer's keys. clientID may be empty to skip
// the audience check.
func NewOIDCValidator(ctx context.Context, issuerURL, clientID string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID, SkipClientIDCheck: clientID == ""})
	return &OIDCValidator{verifier: verifier}, nil
}

func (v *OIDCValidator) ValidateAccessToken(ctx context.Context, token string) (ports.AccessClaims, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return ports.AccessClaims{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidToken, err)
	}
	var claims struct {
		Email string `json:"email"`
		JTI   string `json:"jti"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return ports.AccessClaims{}, fmt.Errorf("%w: %w", domerrors.ErrInvalidToken, err)
	}
	return ports.AccessClaims{
		UserID:    idToken.Subject,
		TokenID:   claims.JTI,
		Email:     claims.Email,
		ExpiresAt: idToken.Expiry,
		External:  true,
	}, nil
}

// ChainValidator tries each validator in order and returns the first success.
type ChainValidator []ports.TokenValidator

func (c ChainValidator) ValidateAccessToken(ctx context.Context, token string) (ports.AccessClaims, error) {
	lastErr := error(domerrors.ErrInvalidToken)
	for _, v := range c {
		if v == nil {
			continue
		}
		claims, err := v.ValidateAccessToken(ctx, token)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return ports.AccessClaims{}, lastErr
}

var (
	_ ports.TokenValidator = (*OIDCValidator)(nil)
	_ ports.TokenValidator = ChainValidator(nil)
)
