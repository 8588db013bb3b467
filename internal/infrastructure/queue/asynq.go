package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

const (
	TypeReconcile         = "assignments:reconcile"
	TypeSendPasswordReset = "email:password_reset"
	TypeWebhook           = "webhook:emit"
)

// reconcileUniqueTTL collapses repeated sign-ins into one cleanup run.
const reconcileUniqueTTL = time.Minute

type reconcilePayload struct {
	UserID string `json:"user_id"`
}

type passwordResetPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

type webhookPayload struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueReconcile(ctx context.Context, userID domain.UserID) error {
	payload, _ := json.Marshal(reconcilePayload{UserID: userID.String()})
	task := asynq.NewTask(TypeReconcile, payload, asynq.MaxRetry(3), asynq.Unique(reconcileUniqueTTL))
	if _, err := q.client.EnqueueContext(ctx, task); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		q.log.Warn().Err(err).Str("user_id", userID.String()).Msg("enqueue reconcile failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error {
	payload, _ := json.Marshal(passwordResetPayload{Email: email, ResetURL: resetURL})
	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeSendPasswordReset, payload)); err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue password reset email failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) EnqueueWebhook(ctx context.Context, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, _ := json.Marshal(webhookPayload{Event: event, Payload: raw})
	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeWebhook, body, asynq.MaxRetry(5))); err != nil {
		q.log.Warn().Err(err).Str("event", event).Msg("enqueue webhook failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
