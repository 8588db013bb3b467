package status

import "github.com/crewrelief/crewrelief/internal/domain"

// PropagateToShip copies profile-derived fields onto a ship assignment.
// Non-empty profile values win; email and phone follow the profile's sharing
// flags and are blanked when the user does not share them.
func PropagateToShip(p *domain.UserProfile, a *domain.ShipAssignment) {
	if p == nil || a == nil {
		return
	}
	a.Company = prefer(p.Company, a.Company)
	a.FleetType = prefer(p.FleetType, a.FleetType)
	a.Rank = prefer(p.Rank, a.Rank)
	a.Email = shared(p.ShowEmailToOthers, p.Email, a.Email)
	a.MobileNumber = shared(p.ShowPhoneToOthers, p.MobileNumber, a.MobileNumber)
}

// PropagateToLand is PropagateToShip for land assignments, which carry no rank.
func PropagateToLand(p *domain.UserProfile, a *domain.LandAssignment) {
	if p == nil || a == nil {
		return
	}
	a.Company = prefer(p.Company, a.Company)
	a.FleetType = prefer(p.FleetType, a.FleetType)
	a.Email = shared(p.ShowEmailToOthers, p.Email, a.Email)
	a.MobileNumber = shared(p.ShowPhoneToOthers, p.MobileNumber, a.MobileNumber)
}

func prefer(fromProfile, current string) string {
	if fromProfile != "" {
		return fromProfile
	}
	return current
}

func shared(show bool, fromProfile, current string) string {
	if !show {
		return ""
	}
	return prefer(fromProfile, current)
}
