package account

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

// ForgotPassword asks the identity provider to send a reset link. It never
// reports whether the email is registered; provider errors are only logged.
type ForgotPassword struct {
	idp ports.IdentityProvider
	log zerolog.Logger
}

func NewForgotPassword(idp ports.IdentityProvider, log zerolog.Logger) *ForgotPassword {
	return &ForgotPassword{idp: idp, log: log}
}

func (uc *ForgotPassword) Execute(ctx context.Context, email string) {
	if err := uc.idp.SendPasswordReset(ctx, strings.ToLower(strings.TrimSpace(email))); err != nil {
		uc.log.Error().Err(err).Msg("password reset request failed")
	}
}

type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

type ResetPassword struct {
	idp ports.IdentityProvider
}

func NewResetPassword(idp ports.IdentityProvider) *ResetPassword {
	return &ResetPassword{idp: idp}
}

func (uc *ResetPassword) Execute(ctx context.Context, input ResetPasswordInput) error {
	return uc.idp.ResetPassword(ctx, input.Token, input.NewPassword)
}
