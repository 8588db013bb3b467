package account

import (
	"context"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// SignOut revokes the presented access token until it would have expired.
type SignOut struct {
	revocations ports.RevocationStore
}

func NewSignOut(revocations ports.RevocationStore) *SignOut {
	return &SignOut{revocations: revocations}
}

func (uc *SignOut) Execute(ctx context.Context, claims ports.AccessClaims) error {
	if claims.UserID == "" {
		return domerrors.ErrUnauthenticated
	}
	return uc.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}
