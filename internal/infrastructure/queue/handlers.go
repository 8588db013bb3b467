package queue

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// ReconcileFunc repairs duplicate assignments and profile status for one user.
type ReconcileFunc func(ctx context.Context, userID domain.UserID) error

// taskHandlers holds the task bodies shared by the asynq worker and the inline enqueuer.
type taskHandlers struct {
	reconcile ReconcileFunc
	emitter   ports.WebhookEmitter
	log       zerolog.Logger
}

func (h *taskHandlers) runReconcile(ctx context.Context, userID domain.UserID) error {
	if h.reconcile == nil || userID.IsZero() {
		return nil
	}
	if err := h.reconcile(ctx, userID); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID.String()).Msg("reconcile failed")
		return err
	}
	return nil
}

// Email delivery is an external collaborator; the link is logged for operators.
func (h *taskHandlers) sendPasswordReset(_ context.Context, email, resetURL string) error {
	h.log.Info().Str("email", email).Str("reset_url", resetURL).
		Msg("password reset email (log only; configure a mail relay for real delivery)")
	return nil
}

func (h *taskHandlers) emitWebhook(ctx context.Context, event string, payload json.RawMessage) error {
	if h.emitter == nil {
		return nil
	}
	var ev ports.AuditEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Event == "" {
		ev = ports.AuditEvent{Event: event, Success: true}
	}
	return h.emitter.Emit(ctx, ev)
}
