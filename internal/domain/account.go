package domain

import "time"

// Account is an email/password credential owned by the local identity provider.
type Account struct {
	UserID       UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
