package ports

import "context"

// LoginLockoutStore tracks failed sign-in attempts and cooldown per email.
type LoginLockoutStore interface {
	// IsLocked returns true if the account is locked, and the remaining cooldown.
	IsLocked(ctx context.Context, email string) (locked bool, retryAfterSeconds int)
	// RecordFailure records a failed sign-in; may lock the account after N failures.
	RecordFailure(ctx context.Context, email string)
	// RecordSuccess clears the failure count.
	RecordSuccess(ctx context.Context, email string)
}
