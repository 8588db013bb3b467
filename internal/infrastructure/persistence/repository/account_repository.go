package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// AccountRepository implements ports.CredentialStore; accounts are keyed by normalized email.
type AccountRepository struct {
	store ports.DocumentStore
}

func NewAccountRepository(store ports.DocumentStore) *AccountRepository {
	return &AccountRepository{store: store}
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	key := accountKey(account.Email)
	if key == "" {
		return domerrors.NewValidationError("email", "required")
	}
	existing, err := r.GetByEmail(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		return domerrors.ErrEmailTaken
	}
	err = r.store.Set(ctx, ports.CollectionAccounts, key, map[string]any{
		fieldUserIdentifier: account.UserID.String(),
		fieldEmail:          key,
		fieldPasswordHash:   account.PasswordHash,
	})
	return domerrors.NewStoreError("set", ports.CollectionAccounts, err)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	doc, err := r.store.Get(ctx, ports.CollectionAccounts, accountKey(email))
	if err != nil {
		if errors.Is(err, ports.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, domerrors.NewStoreError("get", ports.CollectionAccounts, err)
	}
	return &domain.Account{
		UserID:       domain.UserID(stringField(doc.Data, fieldUserIdentifier)),
		Email:        stringField(doc.Data, fieldEmail),
		PasswordHash: stringField(doc.Data, fieldPasswordHash),
		CreatedAt:    doc.CreateTime,
		UpdatedAt:    doc.UpdateTime,
	}, nil
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	err := r.store.Update(ctx, ports.CollectionAccounts, accountKey(email), map[string]any{fieldPasswordHash: hash})
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return domerrors.ErrInvalidCredentials
	}
	return domerrors.NewStoreError("update", ports.CollectionAccounts, err)
}

func (r *AccountRepository) DeleteByUserID(ctx context.Context, userID domain.UserID) error {
	docs, err := r.store.Query(ctx, ports.CollectionAccounts, ports.Eq(fieldUserIdentifier, userID.String()))
	if err != nil {
		return domerrors.NewStoreError("query", ports.CollectionAccounts, err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return domerrors.NewStoreError("batch delete", ports.CollectionAccounts, r.store.BatchDelete(ctx, ports.CollectionAccounts, ids))
}

// PasswordResetRepository implements ports.PasswordResetStore; tokens are keyed by their hash.
type PasswordResetRepository struct {
	store ports.DocumentStore
	now   func() time.Time
}

func NewPasswordResetRepository(store ports.DocumentStore) *PasswordResetRepository {
	return &PasswordResetRepository{store: store, now: time.Now}
}

func (r *PasswordResetRepository) Create(ctx context.Context, tokenHash, email string, expiresAt time.Time) error {
	err := r.store.Set(ctx, ports.CollectionPasswordResets, tokenHash, map[string]any{
		fieldEmail:     accountKey(email),
		fieldExpiresAt: expiresAt.Unix(),
	})
	return domerrors.NewStoreError("set", ports.CollectionPasswordResets, err)
}

func (r *PasswordResetRepository) Consume(ctx context.Context, tokenHash string) (string, error) {
	doc, err := r.store.Get(ctx, ports.CollectionPasswordResets, tokenHash)
	if err != nil {
		if errors.Is(err, ports.ErrDocumentNotFound) {
			return "", domerrors.ErrInvalidToken
		}
		return "", domerrors.NewStoreError("get", ports.CollectionPasswordResets, err)
	}
	if err := r.store.Delete(ctx, ports.CollectionPasswordResets, tokenHash); err != nil {
		return "", domerrors.NewStoreError("delete", ports.CollectionPasswordResets, err)
	}
	if timeField(doc.Data, fieldExpiresAt).Before(r.now()) {
		return "", domerrors.ErrInvalidToken
	}
	return stringField(doc.Data, fieldEmail), nil
}

var (
	_ ports.CredentialStore    = (*AccountRepository)(nil)
	_ ports.PasswordResetStore = (*PasswordResetRepository)(nil)
)
