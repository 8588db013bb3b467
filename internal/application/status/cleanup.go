package status

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// CleanupDuplicates repairs drift left by concurrent writes and older clients.
// It runs after sign-in and from the admin endpoint.
type CleanupDuplicates struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
	log         zerolog.Logger
}

func NewCleanupDuplicates(profiles ports.ProfileRepository, assignments ports.AssignmentRepository, log zerolog.Logger) *CleanupDuplicates {
	return &CleanupDuplicates{profiles: profiles, assignments: assignments, log: log}
}

// DeleteAllExcept deletes the user's records of kind. With keepNewest the
// most recently created record survives.
func (uc *CleanupDuplicates) DeleteAllExcept(ctx context.Context, userID domain.UserID, kind domain.AssignmentKind, keepNewest bool) (int, error) {
	if userID.IsZero() {
		return 0, domerrors.ErrUnauthenticated
	}
	return uc.assignments.DeleteAllExcept(ctx, kind, userID, keepNewest)
}

// RemoveLegacy deletes records of kind that are not keyed by the user id.
// When no record is keyed by the user id the newest one is kept instead.
func (uc *CleanupDuplicates) RemoveLegacy(ctx context.Context, userID domain.UserID, kind domain.AssignmentKind) (int, error) {
	refs, err := uc.assignments.ListRefs(ctx, kind, userID)
	if err != nil {
		return 0, err
	}
	if len(refs) < 2 {
		return 0, nil
	}
	keep := refs[0]
	for _, ref := range refs {
		switch {
		case ref.ID == userID.String():
			keep = ref
		case keep.ID != userID.String() && ref.CreatedAt.After(keep.CreatedAt):
			keep = ref
		}
	}
	doomed := make([]string, 0, len(refs)-1)
	for _, ref := range refs {
		if ref.ID != keep.ID {
			doomed = append(doomed, ref.ID)
		}
	}
	if err := uc.assignments.BatchDelete(ctx, kind, doomed); err != nil {
		return 0, err
	}
	uc.log.Info().Str("user_id", userID.String()).Str("kind", string(kind)).Int("deleted", len(doomed)).
		Str("kept", keep.ID).Msg("duplicate assignments removed")
	return len(doomed), nil
}

type ReconcileResult struct {
	Deleted        int
	Status         domain.Status
	StatusRepaired bool
}

// Reconcile removes duplicates of both kinds and makes the profile status
// agree with the stored assignments. The repository is the source of truth,
// except that when both kinds survive the profile status decides which stays.
func (uc *CleanupDuplicates) Reconcile(ctx context.Context, userID domain.UserID) (*ReconcileResult, error) {
	if userID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	profile, err := uc.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &ReconcileResult{Status: profile.Status}
	var errs []error
	for _, kind := range []domain.AssignmentKind{domain.KindShip, domain.KindLand} {
		n, err := uc.RemoveLegacy(ctx, userID, kind)
		res.Deleted += n
		errs = append(errs, err)
	}

	hasShip, err := uc.exists(ctx, userID, domain.KindShip)
	if err != nil {
		return res, errors.Join(append(errs, err)...)
	}
	hasLand, err := uc.exists(ctx, userID, domain.KindLand)
	if err != nil {
		return res, errors.Join(append(errs, err)...)
	}

	want := profile.Status
	switch {
	case hasShip && hasLand:
		n, err := uc.assignments.DeleteAllExcept(ctx, domain.KindForStatus(profile.Status).Opposite(), userID, false)
		res.Deleted += n
		errs = append(errs, err)
	case hasShip:
		want = domain.StatusOnShip
	case hasLand:
		want = domain.StatusOnLand
	}
	if want != profile.Status {
		if err := uc.profiles.Update(ctx, userID, ports.ProfilePatch{Status: &want}); err != nil {
			errs = append(errs, err)
		} else {
			res.Status, res.StatusRepaired = want, true
		}
	}
	if res.Deleted > 0 || res.StatusRepaired {
		uc.log.Info().Str("user_id", userID.String()).Int("deleted", res.Deleted).
			Bool("status_repaired", res.StatusRepaired).Msg("assignments reconciled")
	}
	return res, errors.Join(errs...)
}

func (uc *CleanupDuplicates) exists(ctx context.Context, userID domain.UserID, kind domain.AssignmentKind) (bool, error) {
	var err error
	if kind == domain.KindShip {
		_, err = uc.assignments.GetShip(ctx, userID)
	} else {
		_, err = uc.assignments.GetLand(ctx, userID)
	}
	if errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ClearAssignments deletes every assignment of both kinds owned by userID.
func ClearAssignments(ctx context.Context, assignments ports.AssignmentRepository, userID domain.UserID) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, kind := range []domain.AssignmentKind{domain.KindShip, domain.KindLand} {
		n, err := assignments.DeleteAllExcept(ctx, kind, userID, false)
		total += n
		errs = append(errs, err)
	}
	return total, errors.Join(errs...)
}
