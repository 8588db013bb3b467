package matching

import "github.com/crewrelief/crewrelief/internal/domain"

// ContactField is a privacy-gated profile field.
type ContactField int

const (
	ContactEmail ContactField = iota
	ContactPhone
)

// Match is one candidate with its owner. Exactly one of Ship and Land is set.
type Match struct {
	Kind    domain.AssignmentKind
	Ship    *domain.ShipAssignment
	Land    *domain.LandAssignment
	Profile *domain.UserProfile
}

// OwnerID returns the id of the user behind the candidate record.
func (m Match) OwnerID() domain.UserID {
	if m.Ship != nil {
		return m.Ship.OwnerID
	}
	if m.Land != nil {
		return m.Land.OwnerID
	}
	if m.Profile != nil {
		return m.Profile.ID
	}
	return ""
}

// CanSeeContact applies reciprocal privacy: both profiles must be visible and
// both users must share the field.
func CanSeeContact(seeker, candidate *domain.UserProfile, field ContactField) bool {
	if seeker == nil || candidate == nil {
		return false
	}
	if !seeker.IsProfileVisible || !candidate.IsProfileVisible {
		return false
	}
	switch field {
	case ContactEmail:
		return seeker.ShowEmailToOthers && candidate.ShowEmailToOthers
	case ContactPhone:
		return seeker.ShowPhoneToOthers && candidate.ShowPhoneToOthers
	}
	return false
}

// CanSeeIdentity reports whether name, rank and fleet may be shown.
func CanSeeIdentity(candidate *domain.UserProfile) bool {
	return candidate != nil && candidate.IsProfileVisible
}

// Redact returns a copy of m with contact fields the seeker may not see
// blanked on both the profile and the assignment. The input is not modified.
func Redact(seeker *domain.UserProfile, m Match) Match {
	showEmail := CanSeeContact(seeker, m.Profile, ContactEmail)
	showPhone := CanSeeContact(seeker, m.Profile, ContactPhone)
	out := Match{Kind: m.Kind}
	if m.Profile != nil {
		p := *m.Profile
		if !showEmail {
			p.Email = ""
		}
		if !showPhone {
			p.MobileNumber = ""
		}
		if !CanSeeIdentity(m.Profile) {
			p.Name, p.Surname, p.Rank, p.FleetType, p.PhotoURL = "", "", "", "", ""
		}
		out.Profile = &p
	}
	if m.Ship != nil {
		s := *m.Ship
		if !showEmail {
			s.Email = ""
		}
		if !showPhone {
			s.MobileNumber = ""
		}
		out.Ship = &s
	}
	if m.Land != nil {
		l := *m.Land
		if !showEmail {
			l.Email = ""
		}
		if !showPhone {
			l.MobileNumber = ""
		}
		out.Land = &l
	}
	return out
}
