package account

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

type SignInInput struct {
	Email    string
	Password string
}

// SignIn checks the lockout, authenticates against the identity provider,
// makes sure a profile exists and schedules an assignment reconcile.
type SignIn struct {
	idp       ports.IdentityProvider
	ensure    *EnsureProfile
	lockout   ports.LoginLockoutStore
	enqueuer  ports.TaskEnqueuer
	issuer    ports.TokenIssuer
	accessExp int64
	log       zerolog.Logger
}

func NewSignIn(idp ports.IdentityProvider, ensure *EnsureProfile, lockout ports.LoginLockoutStore, enqueuer ports.TaskEnqueuer, issuer ports.TokenIssuer, accessExp int64, log zerolog.Logger) *SignIn {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	return &SignIn{
		idp:       idp,
		ensure:    ensure,
		lockout:   lockout,
		enqueuer:  enqueuer,
		issuer:    issuer,
		accessExp: accessExp,
		log:       log,
	}
}

func (uc *SignIn) Execute(ctx context.Context, input SignInInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if uc.lockout != nil {
		if locked, retry := uc.lockout.IsLocked(ctx, email); locked {
			return nil, &LockedError{RetryAfterSeconds: retry}
		}
	}
	userID, err := uc.idp.SignIn(ctx, email, input.Password)
	if err != nil {
		if uc.lockout != nil && errors.Is(err, domerrors.ErrInvalidCredentials) {
			uc.lockout.RecordFailure(ctx, email)
		}
		return nil, err
	}
	if uc.lockout != nil {
		uc.lockout.RecordSuccess(ctx, email)
	}
	profile, err := uc.ensure.Execute(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if err := uc.enqueuer.EnqueueReconcile(ctx, userID); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID.String()).Msg("sign in: reconcile not scheduled")
	}
	s, err := issue(uc.issuer, userID, email, uc.accessExp)
	if err != nil {
		return nil, err
	}
	s.Profile = profile
	return s, nil
}
