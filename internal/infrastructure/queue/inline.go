package queue

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// InlineEnqueuer runs tasks in the calling goroutine when Redis is not
// configured. Task failures are logged, never returned, so callers behave
// the same as with a queue.
type InlineEnqueuer struct {
	h taskHandlers
}

func NewInlineEnqueuer(reconcile ReconcileFunc, emitter ports.WebhookEmitter, log zerolog.Logger) *InlineEnqueuer {
	return &InlineEnqueuer{h: taskHandlers{reconcile: reconcile, emitter: emitter, log: log}}
}

func (q *InlineEnqueuer) EnqueueReconcile(ctx context.Context, userID domain.UserID) error {
	_ = q.h.runReconcile(ctx, userID)
	return nil
}

func (q *InlineEnqueuer) EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error {
	return q.h.sendPasswordReset(ctx, email, resetURL)
}

func (q *InlineEnqueuer) EnqueueWebhook(ctx context.Context, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := q.h.emitWebhook(ctx, event, raw); err != nil {
		q.h.log.Warn().Err(err).Str("event", event).Msg("webhook emit failed")
	}
	return nil
}

var _ ports.TaskEnqueuer = (*InlineEnqueuer)(nil)
