package matching

import (
	"strings"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// CanonicalWindowDays is the half-width of the release/joining date window.
const CanonicalWindowDays = 15

// CompanyMode selects how strictly company names are compared.
type CompanyMode int

const (
	// CompanyRelaxed accepts a substring match in either direction.
	CompanyRelaxed CompanyMode = iota
	// CompanyStrict requires case-insensitive equality.
	CompanyStrict
)

// Reason explains why a pair was rejected. Debug logging only.
type Reason string

// Rejection reasons. ReasonNone means the pair passed every check.
const (
	ReasonNone    Reason = ""
	ReasonMissing Reason = "missing"
	ReasonFleet   Reason = "fleet"
	ReasonRank    Reason = "rank"
	ReasonCompany Reason = "company"
	ReasonDate    Reason = "date"
	ReasonHidden  Reason = "hidden"
)

// Verdict is the outcome of Check.
type Verdict struct {
	Compatible bool
	Reason     Reason
}

// Pair is one ship assignment and one land assignment with their owners.
// Owner profiles are optional; they fill fleet, rank and company when the
// assignment leaves them blank.
type Pair struct {
	Ship      *domain.ShipAssignment
	ShipOwner *domain.UserProfile
	Land      *domain.LandAssignment
	LandOwner *domain.UserProfile
}

// FromShip builds a pair when the ship side initiates the comparison.
func FromShip(ship *domain.ShipAssignment, shipOwner *domain.UserProfile, land *domain.LandAssignment, landOwner *domain.UserProfile) Pair {
	return Pair{Ship: ship, ShipOwner: shipOwner, Land: land, LandOwner: landOwner}
}

// FromLand builds the same pair from the land side.
func FromLand(land *domain.LandAssignment, landOwner *domain.UserProfile, ship *domain.ShipAssignment, shipOwner *domain.UserProfile) Pair {
	return Pair{Ship: ship, ShipOwner: shipOwner, Land: land, LandOwner: landOwner}
}

// IsCompatible reports whether the pair is a viable relief match.
func IsCompatible(p Pair, mode CompanyMode) bool {
	return Check(p, mode).Compatible
}

// Check runs the fleet, rank, company and date rules in that order and
// stops at the first failure. Missing data is a rejection, never an error.
func Check(p Pair, mode CompanyMode) Verdict {
	return CheckWithin(p, mode, CanonicalWindowDays)
}

// CheckWithin is Check with a custom date window half-width.
func CheckWithin(p Pair, mode CompanyMode, windowDays int) Verdict {
	if p.Ship == nil || p.Land == nil {
		return reject(ReasonMissing)
	}
	if !FleetMatches(p.shipFleet(), p.landFleet()) {
		return reject(ReasonFleet)
	}
	if !RankMatches(p.shipRank(), p.landRank()) {
		return reject(ReasonRank)
	}
	if shipCompany := strings.TrimSpace(p.Ship.Company); shipCompany != "" {
		if !CompanyMatches(shipCompany, p.landCompany(), mode) {
			return reject(ReasonCompany)
		}
	}
	release := p.Ship.ExpectedReleaseDate()
	if release.IsZero() || p.Land.ExpectedJoiningDate.IsZero() {
		return reject(ReasonMissing)
	}
	if !ExactWindow(release, windowDays).Contains(p.Land.ExpectedJoiningDate) {
		return reject(ReasonDate)
	}
	return Verdict{Compatible: true}
}

func reject(r Reason) Verdict { return Verdict{Reason: r} }

// FleetMatches is a case-insensitive containment check in either direction.
// An empty fleet on either side never matches.
func FleetMatches(a, b string) bool {
	return containsEither(a, b)
}

// RankMatches is a case-insensitive equality check; empty ranks never match.
func RankMatches(a, b string) bool {
	a, b = normalize(a), normalize(b)
	return a != "" && a == b
}

// CompanyMatches compares two non-empty company names under mode.
func CompanyMatches(a, b string, mode CompanyMode) bool {
	if mode == CompanyStrict {
		a, b = normalize(a), normalize(b)
		return a != "" && a == b
	}
	return containsEither(a, b)
}

func containsEither(a, b string) bool {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (p Pair) shipFleet() string {
	if p.ShipOwner == nil {
		return p.Ship.FleetType
	}
	return firstNonEmpty(p.Ship.FleetType, p.ShipOwner.FleetType)
}

func (p Pair) landFleet() string {
	if p.LandOwner == nil {
		return p.Land.FleetType
	}
	return firstNonEmpty(p.Land.FleetType, p.LandOwner.FleetType)
}

func (p Pair) shipRank() string {
	if p.ShipOwner == nil {
		return p.Ship.Rank
	}
	return firstNonEmpty(p.Ship.Rank, p.ShipOwner.Rank)
}

// Land assignments carry no rank of their own; the owner's present rank is used.
func (p Pair) landRank() string {
	if p.LandOwner == nil {
		return ""
	}
	return p.LandOwner.Rank
}

func (p Pair) landCompany() string {
	if p.LandOwner == nil {
		return p.Land.Company
	}
	return firstNonEmpty(p.Land.Company, p.LandOwner.Company)
}
