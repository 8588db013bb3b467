package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

const (
	StepClearAssignments = "delete assignments"
	StepDeletePhotos     = "delete photos"
	StepDeleteProfile    = "delete profile"
	StepRevokeToken      = "revoke token"
)

type DeleteAccountInput struct {
	Claims ports.AccessClaims
}

type DeleteAccountResult struct {
	AssignmentsDeleted int
	Warnings           *domerrors.PartialFailure
}

// DeleteAccount cascades through assignments, photos and the profile before
// removing the identity. Data steps are best effort; the identity goes last so
// a failed cascade can be retried by signing in again.
type DeleteAccount struct {
	idp         ports.IdentityProvider
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
	photos      ports.PhotoStore
	revocations ports.RevocationStore
	tracker     *matching.Tracker
	log         zerolog.Logger
}

func NewDeleteAccount(idp ports.IdentityProvider, profiles ports.ProfileRepository, assignments ports.AssignmentRepository,
	photos ports.PhotoStore, revocations ports.RevocationStore, tracker *matching.Tracker, log zerolog.Logger) *DeleteAccount {
	return &DeleteAccount{
		idp:         idp,
		profiles:    profiles,
		assignments: assignments,
		photos:      photos,
		revocations: revocations,
		tracker:     tracker,
		log:         log,
	}
}

func (uc *DeleteAccount) Execute(ctx context.Context, input DeleteAccountInput) (*DeleteAccountResult, error) {
	userID := domain.UserID(input.Claims.UserID)
	if userID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	res := &DeleteAccountResult{Warnings: &domerrors.PartialFailure{Op: "delete account"}}

	n, err := status.ClearAssignments(ctx, uc.assignments, userID)
	res.AssignmentsDeleted = n
	res.Warnings.Add(StepClearAssignments, err)
	if uc.photos != nil {
		res.Warnings.Add(StepDeletePhotos, uc.photos.DeleteAll(ctx, userID))
	}
	if err := uc.profiles.Delete(ctx, userID); err != nil && !errors.Is(err, domerrors.ErrProfileNotFound) {
		res.Warnings.Add(StepDeleteProfile, err)
	}

	if err := uc.idp.DeleteIdentity(ctx, userID); err != nil {
		uc.log.Error().Err(err).Str("user_id", userID.String()).Strs("warnings", res.Warnings.Messages()).
			Msg("delete account: identity not deleted")
		return nil, fmt.Errorf("delete identity: %w", err)
	}
	if uc.tracker != nil {
		uc.tracker.Forget(userID)
	}
	if uc.revocations != nil {
		res.Warnings.Add(StepRevokeToken, uc.revocations.Revoke(ctx, input.Claims.TokenID, input.Claims.ExpiresAt))
	}
	for _, s := range res.Warnings.Steps {
		uc.log.Warn().Err(s.Err).Str("user_id", userID.String()).Str("step", s.Step).Msg("delete account step failed")
	}
	uc.log.Info().Str("user_id", userID.String()).Int("assignments_deleted", n).Msg("account deleted")
	return res, nil
}
