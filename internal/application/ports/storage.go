package ports

import (
	"context"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// PhotoStore is the slice of the photo storage service needed for account deletion.
type PhotoStore interface {
	DeleteAll(ctx context.Context, userID domain.UserID) error
}
