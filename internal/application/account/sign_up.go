package account

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

type SignUpInput struct {
	Email    string
	Password string
}

// SignUp registers the identity, stores the default profile and signs the user in.
type SignUp struct {
	idp       ports.IdentityProvider
	profiles  ports.ProfileRepository
	issuer    ports.TokenIssuer
	accessExp int64
	log       zerolog.Logger
}

func NewSignUp(idp ports.IdentityProvider, profiles ports.ProfileRepository, issuer ports.TokenIssuer, accessExp int64, log zerolog.Logger) *SignUp {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	return &SignUp{idp: idp, profiles: profiles, issuer: issuer, accessExp: accessExp, log: log}
}

func (uc *SignUp) Execute(ctx context.Context, input SignUpInput) (*Session, error) {
	userID, err := uc.idp.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	profile := domain.NewDefaultProfile(userID, input.Email)
	if err := uc.profiles.Save(ctx, profile); err != nil {
		// Sign-in creates the profile later if this write is lost.
		uc.log.Warn().Err(err).Str("user_id", userID.String()).Msg("sign up: default profile not saved")
	}
	s, err := issue(uc.issuer, userID, input.Email, uc.accessExp)
	if err != nil {
		return nil, err
	}
	s.Profile = profile
	return s, nil
}
