package storage

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// NoopPhotoStore is used when no photo bucket is configured. Photo URLs on
// profiles then point at an external host and there is nothing to delete.
type NoopPhotoStore struct {
	log zerolog.Logger
}

func NewNoopPhotoStore(log zerolog.Logger) *NoopPhotoStore {
	return &NoopPhotoStore{log: log}
}

func (s *NoopPhotoStore) DeleteAll(_ context.Context, userID domain.UserID) error {
	s.log.Debug().Str("user_id", userID.String()).Msg("no photo store configured; skipping photo deletion")
	return nil
}

var _ ports.PhotoStore = (*NoopPhotoStore)(nil)
