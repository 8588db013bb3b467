package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

type recordingEmitter struct {
	events []ports.AuditEvent
}

func (r *recordingEmitter) Emit(_ context.Context, ev ports.AuditEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func TestInlineEnqueuer(t *testing.T) {
	var reconciled []domain.UserID
	emitter := &recordingEmitter{}
	q := NewInlineEnqueuer(func(_ context.Context, id domain.UserID) error {
		reconciled = append(reconciled, id)
		return errors.New("store down")
	}, emitter, zerolog.Nop())

	if err := q.EnqueueReconcile(context.Background(), "u1"); err != nil {
		t.Errorf("reconcile failures must not reach the caller: %v", err)
	}
	if len(reconciled) != 1 || reconciled[0] != "u1" {
		t.Errorf("reconciled = %v", reconciled)
	}
	ev := ports.AuditEvent{Event: "user.login", UserID: "u1", Success: true}
	if err := q.EnqueueWebhook(context.Background(), ev.Event, ev); err != nil {
		t.Fatal(err)
	}
	if len(emitter.events) != 1 || emitter.events[0] != ev {
		t.Errorf("emitted = %+v", emitter.events)
	}
}

func TestWorkerHandlers(t *testing.T) {
	var reconciled domain.UserID
	emitter := &recordingEmitter{}
	w := &Worker{h: taskHandlers{
		reconcile: func(_ context.Context, id domain.UserID) error { reconciled = id; return nil },
		emitter:   emitter,
		log:       zerolog.Nop(),
	}}
	ctx := context.Background()

	payload, _ := json.Marshal(reconcilePayload{UserID: "u7"})
	if err := w.handleReconcile(ctx, asynq.NewTask(TypeReconcile, payload)); err != nil || reconciled != "u7" {
		t.Fatalf("reconcile: err=%v user=%q", err, reconciled)
	}
	if err := w.handleReconcile(ctx, asynq.NewTask(TypeReconcile, []byte("{"))); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("bad payload should skip retries, got %v", err)
	}

	raw, _ := json.Marshal(ports.AuditEvent{Event: "status.changed", UserID: "u7", Success: true})
	body, _ := json.Marshal(webhookPayload{Event: "status.changed", Payload: raw})
	if err := w.handleWebhook(ctx, asynq.NewTask(TypeWebhook, body)); err != nil {
		t.Fatal(err)
	}
	if len(emitter.events) != 1 || emitter.events[0].UserID != "u7" {
		t.Errorf("emitted = %+v", emitter.events)
	}
}
