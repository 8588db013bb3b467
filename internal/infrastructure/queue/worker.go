package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

// Worker runs the asynq task handlers.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	h   taskHandlers
}

// NewWorker creates an asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, reconcile ReconcileFunc, emitter ports.WebhookEmitter, log zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		LogLevel:    asynq.InfoLevel,
	})
	w := &Worker{srv: srv, mux: asynq.NewServeMux(), h: taskHandlers{reconcile: reconcile, emitter: emitter, log: log}}
	w.mux.HandleFunc(TypeReconcile, w.handleReconcile)
	w.mux.HandleFunc(TypeSendPasswordReset, w.handleSendPasswordReset)
	w.mux.HandleFunc(TypeWebhook, w.handleWebhook)
	return w
}

func (w *Worker) handleReconcile(ctx context.Context, t *asynq.Task) error {
	var p reconcilePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("reconcile payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.h.runReconcile(ctx, domain.UserID(p.UserID))
}

func (w *Worker) handleSendPasswordReset(ctx context.Context, t *asynq.Task) error {
	var p passwordResetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("password reset payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.h.sendPasswordReset(ctx, p.Email, p.ResetURL)
}

func (w *Worker) handleWebhook(ctx context.Context, t *asynq.Task) error {
	var p webhookPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("webhook payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.h.emitWebhook(ctx, p.Event, p.Payload)
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
