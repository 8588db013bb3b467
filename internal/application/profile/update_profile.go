package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

const StepResyncAssignment = "resync assignment"

type UpdateProfileInput struct {
	CallerID domain.UserID
	Patch    ports.ProfilePatch
}

type UpdateProfileResult struct {
	Profile  *domain.UserProfile
	Warnings *domerrors.PartialFailure
}

// UpdateProfile edits profile fields and copies the ones assignments carry
// (company, fleet, rank, shared contacts) onto the active assignment so
// candidates see current values. Status moves only through ChangeStatus.
type UpdateProfile struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
	log         zerolog.Logger
}

func NewUpdateProfile(profiles ports.ProfileRepository, assignments ports.AssignmentRepository, log zerolog.Logger) *UpdateProfile {
	return &UpdateProfile{profiles: profiles, assignments: assignments, log: log}
}

func (uc *UpdateProfile) Execute(ctx context.Context, input UpdateProfileInput) (*UpdateProfileResult, error) {
	if input.CallerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	if input.Patch.Status != nil {
		return nil, domerrors.NewValidationError("currentStatus", "change status by saving an assignment")
	}
	trim(input.Patch.Name, input.Patch.Surname, input.Patch.Company, input.Patch.FleetType, input.Patch.Rank, input.Patch.MobileNumber)
	if err := uc.profiles.Update(ctx, input.CallerID, input.Patch); err != nil {
		return nil, err
	}
	p, err := uc.profiles.Get(ctx, input.CallerID)
	if err != nil {
		return nil, err
	}
	res := &UpdateProfileResult{Profile: p, Warnings: &domerrors.PartialFailure{Op: "update profile"}}
	if err := uc.resync(ctx, p); err != nil {
		res.Warnings.Add(StepResyncAssignment, err)
		uc.log.Warn().Err(err).Str("user_id", p.ID.String()).Msg("profile update: assignment resync failed")
	}
	return res, nil
}

func (uc *UpdateProfile) resync(ctx context.Context, p *domain.UserProfile) error {
	if domain.KindForStatus(p.Status) == domain.KindShip {
		a, err := uc.assignments.GetShip(ctx, p.ID)
		if errors.Is(err, domerrors.ErrAssignmentNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		status.PropagateToShip(p, a)
		return uc.assignments.SaveShip(ctx, a)
	}
	a, err := uc.assignments.GetLand(ctx, p.ID)
	if errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	status.PropagateToLand(p, a)
	return uc.assignments.SaveLand(ctx, a)
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
