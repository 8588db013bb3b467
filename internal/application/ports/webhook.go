package ports

import "context"

// AuditEvent is a single audit event for logging or webhooks.
type AuditEvent struct {
	Event   string `json:"event"` // user.signup, user.login, status.changed, account.deleted, ...
	UserID  string `json:"user_id,omitempty"`
	IP      string `json:"ip,omitempty"`
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

// WebhookEmitter sends audit events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}
