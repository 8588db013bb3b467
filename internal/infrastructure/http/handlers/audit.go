package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

// AuditLog logs account and status events (user_id, IP, request id).
func AuditLog(log zerolog.Logger, r *http.Request, event string, userID string, success bool, errMsg string) {
	ev := log.Info()
	if !success {
		ev = log.Warn()
	}
	ev.
		Str("event", event).
		Str("user_id", userID).
		Str("ip", getClientIP(r)).
		Str("request_id", middleware.GetReqID(r.Context())).
		Bool("success", success)
	if errMsg != "" {
		ev.Str("error", errMsg)
	}
	ev.Msg("audit")
}

// AuditEmit logs the event and, if enqueuer is non-nil, queues it for the webhook endpoint.
func AuditEmit(log zerolog.Logger, r *http.Request, enqueuer ports.TaskEnqueuer, event, userID string, success bool, errMsg string) {
	AuditLog(log, r, event, userID, success, errMsg)
	if enqueuer == nil {
		return
	}
	err := enqueuer.EnqueueWebhook(r.Context(), event, ports.AuditEvent{
		Event:   event,
		UserID:  userID,
		IP:      getClientIP(r),
		Success: success,
		Err:     errMsg,
	})
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("audit webhook not queued")
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.RemoteAddr
}
