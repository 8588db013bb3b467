package ports

import (
	"context"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// IdentityProvider issues stable opaque user ids. Any provider with a stable
// string id per account satisfies it.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (domain.UserID, error)
	SignIn(ctx context.Context, email, password string) (domain.UserID, error)
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	DeleteIdentity(ctx context.Context, userID domain.UserID) error
}
