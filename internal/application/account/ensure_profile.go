package account

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// EnsureProfile returns the caller's profile, creating the default placeholder
// when the identity has none yet (first sign-in, or a token from an outside issuer).
type EnsureProfile struct {
	profiles ports.ProfileRepository
	log      zerolog.Logger
}

func NewEnsureProfile(profiles ports.ProfileRepository, log zerolog.Logger) *EnsureProfile {
	return &EnsureProfile{profiles: profiles, log: log}
}

func (uc *EnsureProfile) Execute(ctx context.Context, userID domain.UserID, email string) (*domain.UserProfile, error) {
	if userID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	p, err := uc.profiles.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domerrors.ErrProfileNotFound) {
		return nil, err
	}
	p = domain.NewDefaultProfile(userID, email)
	if err := uc.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID.String()).Msg("default profile created")
	return p, nil
}
