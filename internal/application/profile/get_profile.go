package profile

import (
	"context"
	"errors"

	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// GetProfile returns the caller's own profile, unredacted.
type GetProfile struct {
	profiles ports.ProfileRepository
}

func NewGetProfile(profiles ports.ProfileRepository) *GetProfile {
	return &GetProfile{profiles: profiles}
}

func (uc *GetProfile) Execute(ctx context.Context, callerID domain.UserID) (*domain.UserProfile, error) {
	if callerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	return uc.profiles.Get(ctx, callerID)
}

// Assignments is the caller's stored records of both kinds. Normally only
// the kind matching the profile status is present.
type Assignments struct {
	Status domain.Status
	Ship   *domain.ShipAssignment
	Land   *domain.LandAssignment
}

type GetAssignments struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
}

func NewGetAssignments(profiles ports.ProfileRepository, assignments ports.AssignmentRepository) *GetAssignments {
	return &GetAssignments{profiles: profiles, assignments: assignments}
}

func (uc *GetAssignments) Execute(ctx context.Context, callerID domain.UserID) (*Assignments, error) {
	if callerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	p, err := uc.profiles.Get(ctx, callerID)
	if err != nil {
		return nil, err
	}
	out := &Assignments{Status: p.Status}
	if out.Ship, err = uc.assignments.GetShip(ctx, callerID); err != nil && !errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return nil, err
	}
	if out.Land, err = uc.assignments.GetLand(ctx, callerID); err != nil && !errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return nil, err
	}
	return out, nil
}

type ViewProfileInput struct {
	ViewerID domain.UserID
	TargetID domain.UserID
}

// ViewProfile is another user's profile as the viewer is allowed to see it,
// with the target's active assignment attached. Hidden profiles look absent.
type ViewProfile struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
}

func NewViewProfile(profiles ports.ProfileRepository, assignments ports.AssignmentRepository) *ViewProfile {
	return &ViewProfile{profiles: profiles, assignments: assignments}
}

func (uc *ViewProfile) Execute(ctx context.Context, input ViewProfileInput) (*matching.Match, error) {
	if input.ViewerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	target, err := uc.profiles.Get(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}
	self := input.TargetID == input.ViewerID
	if !self && !target.IsProfileVisible {
		return nil, domerrors.ErrProfileNotFound
	}
	m := matching.Match{Kind: domain.KindForStatus(target.Status), Profile: target}
	if m.Kind == domain.KindShip {
		m.Ship, err = uc.assignments.GetShip(ctx, target.ID)
	} else {
		m.Land, err = uc.assignments.GetLand(ctx, target.ID)
	}
	if err != nil && !errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return nil, err
	}
	if !self && ((m.Ship != nil && !m.Ship.IsPublic) || (m.Land != nil && !m.Land.IsPublic)) {
		m.Ship, m.Land = nil, nil
	}
	if self {
		return &m, nil
	}
	viewer, err := uc.profiles.Get(ctx, input.ViewerID)
	if err != nil {
		return nil, err
	}
	redacted := matching.Redact(viewer, m)
	return &redacted, nil
}
