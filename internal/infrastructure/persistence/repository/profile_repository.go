package repository

import (
	"context"
	"errors"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// ProfileRepository maps users/{id} documents to domain.UserProfile.
type ProfileRepository struct {
	store ports.DocumentStore
}

func NewProfileRepository(store ports.DocumentStore) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) Get(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	if id.IsZero() {
		return nil, domerrors.ErrProfileNotFound
	}
	doc, err := r.store.Get(ctx, ports.CollectionUsers, id.String())
	if err != nil {
		if errors.Is(err, ports.ErrDocumentNotFound) {
			return nil, domerrors.ErrProfileNotFound
		}
		return nil, domerrors.NewStoreError("get", ports.CollectionUsers, err)
	}
	return profileFromDocument(doc), nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.ID.IsZero() {
		return domerrors.NewValidationError("id", "required")
	}
	err := r.store.Set(ctx, ports.CollectionUsers, profile.ID.String(), profileToData(profile))
	return domerrors.NewStoreError("set", ports.CollectionUsers, err)
}

func (r *ProfileRepository) Update(ctx context.Context, id domain.UserID, patch ports.ProfilePatch) error {
	fields := patchToFields(patch)
	if len(fields) == 0 {
		return nil
	}
	err := r.store.Update(ctx, ports.CollectionUsers, id.String(), fields)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domerrors.ErrProfileNotFound
	}
	return domerrors.NewStoreError("update", ports.CollectionUsers, err)
}

func (r *ProfileRepository) Delete(ctx context.Context, id domain.UserID) error {
	err := r.store.Delete(ctx, ports.CollectionUsers, id.String())
	return domerrors.NewStoreError("delete", ports.CollectionUsers, err)
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)
