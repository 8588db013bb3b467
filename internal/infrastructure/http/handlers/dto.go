package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar day on the wire ("2024-07-01"). RFC 3339 timestamps and
// Unix seconds are accepted on input for older clients.
type Date struct{ time.Time }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var secs int64
	if err := json.Unmarshal(b, &secs); err == nil {
		d.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

type profileDTO struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Surname           string    `json:"surname"`
	Email             string    `json:"email"`
	MobileNumber      string    `json:"mobileNumber"`
	Company           string    `json:"company"`
	FleetWorking      string    `json:"fleetWorking"`
	PresentRank       string    `json:"presentRank"`
	CurrentStatus     string    `json:"currentStatus"`
	IsProfileVisible  bool      `json:"isProfileVisible"`
	ShowEmailToOthers bool      `json:"showEmailToOthers"`
	ShowPhoneToOthers bool      `json:"showPhoneToOthers"`
	PhotoURL          string    `json:"photoURL,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toProfileDTO(p *domain.UserProfile) *profileDTO {
	if p == nil {
		return nil
	}
	return &profileDTO{
		ID:                p.ID.String(),
		Name:              p.Name,
		Surname:           p.Surname,
		Email:             p.Email,
		MobileNumber:      p.MobileNumber,
		Company:           p.Company,
		FleetWorking:      p.FleetType,
		PresentRank:       p.Rank,
		CurrentStatus:     string(p.Status),
		IsProfileVisible:  p.IsProfileVisible,
		ShowEmailToOthers: p.ShowEmailToOthers,
		ShowPhoneToOthers: p.ShowPhoneToOthers,
		PhotoURL:          p.PhotoURL,
		UpdatedAt:         p.UpdatedAt,
	}
}

type shipDTO struct {
	UserIdentifier      string `json:"userIdentifier"`
	ShipName            string `json:"shipName"`
	Rank                string `json:"rank"`
	Company             string `json:"company"`
	FleetType           string `json:"fleetType"`
	PortOfJoining       string `json:"portOfJoining"`
	Email               string `json:"email"`
	MobileNumber        string `json:"mobileNumber"`
	ContractLength      int    `json:"contractLength"`
	DateOfOnboard       Date   `json:"dateOfOnboard"`
	ExpectedReleaseDate Date   `json:"expectedReleaseDate"`
	IsPublic            bool   `json:"isPublic"`
}

func toShipDTO(a *domain.ShipAssignment) *shipDTO {
	if a == nil {
		return nil
	}
	return &shipDTO{
		UserIdentifier:      a.OwnerID.String(),
		ShipName:            a.ShipName,
		Rank:                a.Rank,
		Company:             a.Company,
		FleetType:           a.FleetType,
		PortOfJoining:       a.PortOfJoining,
		Email:               a.Email,
		MobileNumber:        a.MobileNumber,
		ContractLength:      a.ContractLengthMonths,
		DateOfOnboard:       Date{a.DateOfOnboard},
		ExpectedReleaseDate: Date{a.ExpectedReleaseDate()},
		IsPublic:            a.IsPublic,
	}
}

type landDTO struct {
	UserIdentifier      string `json:"userIdentifier"`
	LastVessel          string `json:"lastVessel"`
	Company             string `json:"company"`
	FleetType           string `json:"fleetType"`
	Email               string `json:"email"`
	MobileNumber        string `json:"mobileNumber"`
	DateHome            Date   `json:"dateHome"`
	ExpectedJoiningDate Date   `json:"expectedJoiningDate"`
	IsPublic            bool   `json:"isPublic"`
}

func toLandDTO(a *domain.LandAssignment) *landDTO {
	if a == nil {
		return nil
	}
	return &landDTO{
		UserIdentifier:      a.OwnerID.String(),
		LastVessel:          a.LastVessel,
		Company:             a.Company,
		FleetType:           a.FleetType,
		Email:               a.Email,
		MobileNumber:        a.MobileNumber,
		DateHome:            Date{a.DateHome},
		ExpectedJoiningDate: Date{a.ExpectedJoiningDate},
		IsPublic:            a.IsPublic,
	}
}

type matchDTO struct {
	Kind    string      `json:"kind"`
	Profile *profileDTO `json:"profile"`
	Ship    *shipDTO    `json:"shipAssignment,omitempty"`
	Land    *landDTO    `json:"landAssignment,omitempty"`
}

func toMatchDTO(m matching.Match) matchDTO {
	return matchDTO{
		Kind:    string(m.Kind),
		Profile: toProfileDTO(m.Profile),
		Ship:    toShipDTO(m.Ship),
		Land:    toLandDTO(m.Land),
	}
}

func warningsOf(p *domerrors.PartialFailure) []string {
	if p.Empty() {
		return []string{}
	}
	return p.Messages()
}
