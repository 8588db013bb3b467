package ports

import (
	"context"
	"errors"
	"time"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// Collection names shared by every DocumentStore adapter.
const (
	CollectionUsers           = "users"
	CollectionShipAssignments = "shipAssignments"
	CollectionLandAssignments = "landAssignments"
	CollectionAccounts        = "accounts"
	CollectionPasswordResets  = "passwordResets"
)

// ErrDocumentNotFound is returned by DocumentStore.Get and Update for a missing id.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one stored record. Timestamps inside Data are Unix epoch seconds.
type Document struct {
	ID         string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// Filter is a single field equality constraint.
type Filter struct {
	Field string
	Value any
}

// Eq builds a Filter.
func Eq(field string, value any) Filter { return Filter{Field: field, Value: value} }

// DocumentStore is the generic backing store: keyed documents per collection,
// equality queries and a batched delete. It cannot join across collections.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set upserts with full overwrite; CreateTime survives overwrites.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error)
	// BatchDelete removes all ids atomically (best effort on stores without transactions).
	BatchDelete(ctx context.Context, collection string, ids []string) error
	Ping(ctx context.Context) error
}

// ProfilePatch carries the profile fields to change; nil means unchanged.
type ProfilePatch struct {
	Name              *string
	Surname           *string
	MobileNumber      *string
	Company           *string
	FleetType         *string
	Rank              *string
	Status            *domain.Status
	IsProfileVisible  *bool
	ShowEmailToOthers *bool
	ShowPhoneToOthers *bool
	PhotoURL          *string
}

// Apply copies the set fields onto p.
func (patch ProfilePatch) Apply(p *domain.UserProfile) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Name, patch.Name)
	set(&p.Surname, patch.Surname)
	set(&p.MobileNumber, patch.MobileNumber)
	set(&p.Company, patch.Company)
	set(&p.FleetType, patch.FleetType)
	set(&p.Rank, patch.Rank)
	set(&p.PhotoURL, patch.PhotoURL)
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsProfileVisible != nil {
		p.IsProfileVisible = *patch.IsProfileVisible
	}
	if patch.ShowEmailToOthers != nil {
		p.ShowEmailToOthers = *patch.ShowEmailToOthers
	}
	if patch.ShowPhoneToOthers != nil {
		p.ShowPhoneToOthers = *patch.ShowPhoneToOthers
	}
}

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	// Get returns domerrors.ErrProfileNotFound when no profile exists.
	Get(ctx context.Context, id domain.UserID) (*domain.UserProfile, error)
	Save(ctx context.Context, profile *domain.UserProfile) error
	Update(ctx context.Context, id domain.UserID, patch ProfilePatch) error
	Delete(ctx context.Context, id domain.UserID) error
}

// AssignmentRepository persists ship and land assignments, one active record
// per kind per owner, keyed by owner id.
type AssignmentRepository interface {
	// SaveShip and SaveLand upsert under the owner id, so create and update are the same call.
	SaveShip(ctx context.Context, a *domain.ShipAssignment) error
	SaveLand(ctx context.Context, a *domain.LandAssignment) error
	// GetShip and GetLand return domerrors.ErrAssignmentNotFound when absent.
	GetShip(ctx context.Context, owner domain.UserID) (*domain.ShipAssignment, error)
	GetLand(ctx context.Context, owner domain.UserID) (*domain.LandAssignment, error)
	ListPublicShips(ctx context.Context) ([]*domain.ShipAssignment, error)
	ListPublicLands(ctx context.Context) ([]*domain.LandAssignment, error)
	// ListRefs returns every record of kind owned by owner, duplicates included.
	ListRefs(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID) ([]domain.AssignmentRef, error)
	BatchDelete(ctx context.Context, kind domain.AssignmentKind, ids []string) error
	// DeleteAllExcept deletes the owner's records of kind; with keepNewest the most
	// recently created one survives. Returns how many were deleted.
	DeleteAllExcept(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID, keepNewest bool) (int, error)
}

// CredentialStore holds email/password accounts for the local identity provider.
type CredentialStore interface {
	// Create returns domerrors.ErrEmailTaken when the email is registered.
	Create(ctx context.Context, account *domain.Account) error
	// GetByEmail returns nil, nil when no account exists.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	DeleteByUserID(ctx context.Context, userID domain.UserID) error
}

// PasswordResetStore keeps hashed one-time reset tokens.
type PasswordResetStore interface {
	Create(ctx context.Context, tokenHash, email string, expiresAt time.Time) error
	// Consume deletes the token and returns its email, or domerrors.ErrInvalidToken.
	Consume(ctx context.Context, tokenHash string) (email string, err error)
}
