package status

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// Step names reported in PartialFailure.
const (
	StepUpdateProfile   = "update profile status"
	StepDeletePrevious  = "delete previous assignments"
	StepSaveAssignment  = "save assignment"
	StepRemoveDuplicate = "remove duplicate assignments"
)

// ChangeStatusInput moves CallerID to To and stores the matching assignment.
// From is what the client believed the status was; the previous kind is
// always derived from To, so a stale From cannot leave both kinds behind.
type ChangeStatusInput struct {
	CallerID domain.UserID
	From     domain.Status
	To       domain.Status
	Ship     *domain.ShipAssignment
	Land     *domain.LandAssignment
}

type ChangeStatusResult struct {
	Profile  *domain.UserProfile
	Ship     *domain.ShipAssignment
	Land     *domain.LandAssignment
	Deleted  int
	Warnings *domerrors.PartialFailure
}

// ChangeStatus is a best-effort sequence, not a transaction: the save is an
// idempotent upsert keyed by user id, so a retry repairs whatever a failed
// step left behind.
type ChangeStatus struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
	cleanup     *CleanupDuplicates
	metrics     ports.MatchMetrics
	log         zerolog.Logger
}

func NewChangeStatus(profiles ports.ProfileRepository, assignments ports.AssignmentRepository, metrics ports.MatchMetrics, log zerolog.Logger) *ChangeStatus {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ChangeStatus{
		profiles:    profiles,
		assignments: assignments,
		cleanup:     NewCleanupDuplicates(profiles, assignments, log),
		metrics:     metrics,
		log:         log,
	}
}

func (uc *ChangeStatus) Execute(ctx context.Context, input ChangeStatusInput) (*ChangeStatusResult, error) {
	if input.CallerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	if !input.To.Valid() {
		return nil, domerrors.NewValidationError("currentStatus", "must be onShip or onLand")
	}
	kind := domain.KindForStatus(input.To)
	if err := uc.validate(input, kind); err != nil {
		return nil, err
	}
	profile, err := uc.profiles.Get(ctx, input.CallerID)
	if err != nil {
		return nil, err
	}
	if input.From != "" && input.From != profile.Status {
		uc.log.Debug().Str("user_id", input.CallerID.String()).Str("from", string(input.From)).
			Str("stored", string(profile.Status)).Msg("status transition from a stale state")
	}

	res := &ChangeStatusResult{Warnings: &domerrors.PartialFailure{Op: "change status"}}

	// 1. Flip the profile status, syncing the company when the profile has none.
	patch := ports.ProfilePatch{Status: &input.To}
	if company := assignmentCompany(input, kind); profile.Company == "" && company != "" {
		patch.Company = &company
	}
	if err := uc.profiles.Update(ctx, input.CallerID, patch); err != nil {
		uc.warn(res, input.CallerID, StepUpdateProfile, err)
	}
	patch.Apply(profile)
	res.Profile = profile

	// 2. Drop every record of the other kind, duplicates included.
	n, err := uc.assignments.DeleteAllExcept(ctx, kind.Opposite(), input.CallerID, false)
	if err != nil {
		uc.warn(res, input.CallerID, StepDeletePrevious, err)
	}
	res.Deleted += n

	// 3. Upsert the new record with the profile fields copied in.
	if kind == domain.KindShip {
		PropagateToShip(profile, input.Ship)
		err = uc.assignments.SaveShip(ctx, input.Ship)
		res.Ship = input.Ship
	} else {
		PropagateToLand(profile, input.Land)
		err = uc.assignments.SaveLand(ctx, input.Land)
		res.Land = input.Land
	}
	if err != nil {
		uc.metrics.StatusChanged(string(input.To), false)
		uc.log.Error().Err(err).Str("user_id", input.CallerID.String()).Strs("warnings", res.Warnings.Messages()).
			Msg("status change: assignment save failed")
		return nil, fmt.Errorf("%w: %w", domerrors.ErrSaveFailed, err)
	}

	// 4. Legacy records of the new kind stored under other ids.
	n, err = uc.cleanup.RemoveLegacy(ctx, input.CallerID, kind)
	if err != nil {
		uc.warn(res, input.CallerID, StepRemoveDuplicate, err)
	}
	res.Deleted += n

	uc.metrics.StatusChanged(string(input.To), true)
	uc.log.Info().Str("user_id", input.CallerID.String()).Str("to", string(input.To)).
		Int("deleted", res.Deleted).Int("warnings", len(res.Warnings.Steps)).Msg("status changed")
	return res, nil
}

// validate checks the new assignment before anything is written and binds it to the caller.
func (uc *ChangeStatus) validate(input ChangeStatusInput, kind domain.AssignmentKind) error {
	if kind == domain.KindShip {
		if input.Ship == nil {
			return domerrors.NewValidationError("shipAssignment", "required for onShip")
		}
		input.Ship.OwnerID = input.CallerID
		return input.Ship.Validate()
	}
	if input.Land == nil {
		return domerrors.NewValidationError("landAssignment", "required for onLand")
	}
	input.Land.OwnerID = input.CallerID
	return input.Land.Validate()
}

func (uc *ChangeStatus) warn(res *ChangeStatusResult, userID domain.UserID, step string, err error) {
	res.Warnings.Add(step, err)
	uc.log.Warn().Err(err).Str("user_id", userID.String()).Str("step", step).Msg("status change step failed")
}

func assignmentCompany(input ChangeStatusInput, kind domain.AssignmentKind) string {
	if kind == domain.KindShip {
		return input.Ship.Company
	}
	return input.Land.Company
}
