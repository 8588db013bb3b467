package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minPasswordLength   = 8
	DefaultResetExpiry  = time.Hour
	resetTokenByteCount = 32
)

// LocalProvider is the built-in email/password identity provider. User ids
// are random UUIDs; reset tokens are stored only as their SHA-256.
type LocalProvider struct {
	accounts ports.CredentialStore
	resets   ports.PasswordResetStore
	hasher   ports.PasswordHasher
	enqueuer ports.TaskEnqueuer
	resetURL string
	expiry   time.Duration
	log      zerolog.Logger
}

func NewLocalProvider(accounts ports.CredentialStore, resets ports.PasswordResetStore, hasher ports.PasswordHasher,
	enqueuer ports.TaskEnqueuer, resetURL string, expiry time.Duration, log zerolog.Logger) *LocalProvider {
	if expiry <= 0 {
		expiry = DefaultResetExpiry
	}
	return &LocalProvider{
		accounts: accounts,
		resets:   resets,
		hasher:   hasher,
		enqueuer: enqueuer,
		resetURL: resetURL,
		expiry:   expiry,
		log:      log,
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (domain.UserID, error) {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return "", domerrors.NewValidationError("email", "must be a valid address")
	}
	if len(password) < minPasswordLength {
		return "", domerrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	account := &domain.Account{
		UserID:       domain.UserID(uuid.NewString()),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		return "", err
	}
	return account.UserID, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (domain.UserID, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if account == nil || !p.hasher.Verify(password, account.PasswordHash) {
		return "", domerrors.ErrInvalidCredentials
	}
	return account.UserID, nil
}

// SendPasswordReset stores a one-time token and enqueues the email. Unknown
// addresses succeed silently so the endpoint does not reveal who is registered.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		p.log.Debug().Msg("password reset requested for unknown email")
		return nil
	}
	raw := make([]byte, resetTokenByteCount)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	if err := p.resets.Create(ctx, hashToken(token), account.Email, time.Now().Add(p.expiry)); err != nil {
		return err
	}
	return p.enqueuer.EnqueueSendPasswordReset(ctx, account.Email, p.resetLink(token))
}

func (p *LocalProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domerrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	email, err := p.resets.Consume(ctx, hashToken(token))
	if err != nil {
		return err
	}
	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return p.accounts.UpdatePasswordHash(ctx, email, hash)
}

func (p *LocalProvider) DeleteIdentity(ctx context.Context, userID domain.UserID) error {
	return p.accounts.DeleteByUserID(ctx, userID)
}

func (p *LocalProvider) resetLink(token string) string {
	u, err := url.Parse(p.resetURL)
	if err != nil || p.resetURL == "" {
		return "?token=" + token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var _ ports.IdentityProvider = (*LocalProvider)(nil)
