package domain

import (
	"time"

	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// DefaultContractLengthMonths applies when a ship assignment omits its contract length.
const DefaultContractLengthMonths = 6

// AssignmentKind distinguishes the two assignment collections.
type AssignmentKind string

const (
	KindShip AssignmentKind = "ship"
	KindLand AssignmentKind = "land"
)

// Opposite returns the other kind.
func (k AssignmentKind) Opposite() AssignmentKind {
	if k == KindShip {
		return KindLand
	}
	return KindShip
}

// KindForStatus maps a status to the assignment kind that represents it.
func KindForStatus(s Status) AssignmentKind {
	if s == StatusOnShip {
		return KindShip
	}
	return KindLand
}

// StatusForKind is the inverse of KindForStatus.
func StatusForKind(k AssignmentKind) Status {
	if k == KindShip {
		return StatusOnShip
	}
	return StatusOnLand
}

// ShipAssignment is a contract aboard a vessel.
type ShipAssignment struct {
	ID                   string
	OwnerID              UserID
	ShipName             string
	Company              string
	FleetType            string
	PortOfJoining        string
	Rank                 string
	Email                string
	MobileNumber         string
	ContractLengthMonths int
	DateOfOnboard        time.Time
	IsPublic             bool
	CreatedAt            time.Time
}

// NewShipAssignment returns a record with the documented defaults applied.
func NewShipAssignment(owner UserID) *ShipAssignment {
	return &ShipAssignment{
		ID:                   owner.String(),
		OwnerID:              owner,
		ContractLengthMonths: DefaultContractLengthMonths,
		IsPublic:             true,
	}
}

// ExpectedReleaseDate is the onboard date plus the contract length in calendar months.
// Returns the zero time when the onboard date is unknown.
func (a *ShipAssignment) ExpectedReleaseDate() time.Time {
	if a == nil || a.DateOfOnboard.IsZero() {
		return time.Time{}
	}
	months := a.ContractLengthMonths
	if months <= 0 {
		months = DefaultContractLengthMonths
	}
	return AddCalendarMonths(a.DateOfOnboard, months)
}

// Validate checks the fields required for a write.
func (a *ShipAssignment) Validate() error {
	if a == nil {
		return domerrors.NewValidationError("shipAssignment", "required")
	}
	if a.OwnerID.IsZero() {
		return domerrors.NewValidationError("userIdentifier", "required")
	}
	if a.DateOfOnboard.IsZero() {
		return domerrors.NewValidationError("dateOfOnboard", "required")
	}
	if a.ContractLengthMonths < 0 {
		return domerrors.NewValidationError("contractLength", "must not be negative")
	}
	return nil
}

// LandAssignment is a period ashore waiting for the next contract.
type LandAssignment struct {
	ID                  string
	OwnerID             UserID
	LastVessel          string
	Company             string
	FleetType           string
	Email               string
	MobileNumber        string
	DateHome            time.Time
	ExpectedJoiningDate time.Time
	IsPublic            bool
	CreatedAt           time.Time
}

// NewLandAssignment returns a record with the documented defaults applied.
func NewLandAssignment(owner UserID) *LandAssignment {
	return &LandAssignment{
		ID:       owner.String(),
		OwnerID:  owner,
		IsPublic: true,
	}
}

// Validate checks the fields required for a write.
func (a *LandAssignment) Validate() error {
	if a == nil {
		return domerrors.NewValidationError("landAssignment", "required")
	}
	if a.OwnerID.IsZero() {
		return domerrors.NewValidationError("userIdentifier", "required")
	}
	if a.ExpectedJoiningDate.IsZero() {
		return domerrors.NewValidationError("expectedJoiningDate", "required")
	}
	if !a.DateHome.IsZero() && a.ExpectedJoiningDate.Before(a.DateHome) {
		return domerrors.NewValidationError("expectedJoiningDate", "must not be before dateHome")
	}
	return nil
}

// AssignmentRef identifies one stored assignment record, used for duplicate cleanup.
type AssignmentRef struct {
	Kind      AssignmentKind
	ID        string
	OwnerID   UserID
	CreatedAt time.Time
}

// AddCalendarMonths adds n months to t, clamping the day to the end of the
// target month (Aug 31 + 6 months is Feb 28, or Feb 29 in a leap year).
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysInMonth(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// CalendarDay truncates t to midnight UTC of its calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
