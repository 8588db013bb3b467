package domain

import (
	"fmt"
	"time"
)

// UserID is the opaque, stable identifier issued by the identity provider.
type UserID string

// String returns the raw identifier.
func (u UserID) String() string { return string(u) }

// IsZero reports whether the id is empty.
func (u UserID) IsZero() bool { return u == "" }

// Status says where a seafarer currently is.
type Status string

const (
	StatusOnShip Status = "onShip"
	StatusOnLand Status = "onLand"
)

// ParseStatus accepts the wire values "onShip" and "onLand".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnShip, StatusOnLand:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the two known states.
func (s Status) Valid() bool { return s == StatusOnShip || s == StatusOnLand }

// UserProfile is the aggregate root owning at most one ship or land assignment.
type UserProfile struct {
	ID                UserID
	Name              string
	Surname           string
	Email             string
	MobileNumber      string
	Company           string
	FleetType         string
	Rank              string
	Status            Status
	IsProfileVisible  bool
	ShowEmailToOthers bool
	ShowPhoneToOthers bool
	PhotoURL          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewDefaultProfile is the placeholder created on first registration or on the
// first sign-in of an identity that has no profile document yet.
func NewDefaultProfile(id UserID, email string) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		ID:                id,
		Email:             email,
		Status:            StatusOnLand,
		IsProfileVisible:  true,
		ShowEmailToOthers: true,
		ShowPhoneToOthers: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// DisplayName joins name and surname.
func (p *UserProfile) DisplayName() string {
	switch {
	case p.Name == "":
		return p.Surname
	case p.Surname == "":
		return p.Name
	}
	return p.Name + " " + p.Surname
}
