package ports

import (
	"context"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// TaskEnqueuer enqueues async tasks (assignment reconcile, email, webhook).
type TaskEnqueuer interface {
	EnqueueReconcile(ctx context.Context, userID domain.UserID) error
	EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error
	EnqueueWebhook(ctx context.Context, event string, payload interface{}) error
}
