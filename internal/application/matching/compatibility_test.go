package matching

import (
	"testing"
	"time"

	"github.com/crewrelief/crewrelief/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// scenarioA is a ship captain on a Tanker for Acme released 2024-07-01 and a
// land captain on Tanker for Acme joining 2024-07-10.
func scenarioA() (*domain.ShipAssignment, *domain.UserProfile, *domain.LandAssignment, *domain.UserProfile) {
	shipOwner := domain.NewDefaultProfile("ship-user", "ship@example.com")
	shipOwner.Status = domain.StatusOnShip
	shipOwner.Rank, shipOwner.FleetType, shipOwner.Company = "Captain", "Tanker", "Acme"
	ship := domain.NewShipAssignment(shipOwner.ID)
	ship.Rank, ship.FleetType, ship.Company = "Captain", "Tanker", "Acme"
	ship.DateOfOnboard = date(2024, 1, 1)
	ship.ContractLengthMonths = 6

	landOwner := domain.NewDefaultProfile("land-user", "land@example.com")
	landOwner.Rank, landOwner.FleetType, landOwner.Company = "Captain", "Tanker", "Acme"
	land := domain.NewLandAssignment(landOwner.ID)
	land.FleetType, land.Company = "Tanker", "Acme"
	land.ExpectedJoiningDate = date(2024, 7, 10)
	return ship, shipOwner, land, landOwner
}

func TestCheck_ScenarioA(t *testing.T) {
	ship, so, land, lo := scenarioA()
	if v := Check(FromShip(ship, so, land, lo), CompanyRelaxed); !v.Compatible {
		t.Fatalf("expected match, got reason %q", v.Reason)
	}
}

func TestCheck_ScenarioB_RankMismatch(t *testing.T) {
	ship, so, land, lo := scenarioA()
	lo.Rank = "Chief Officer"
	v := Check(FromShip(ship, so, land, lo), CompanyRelaxed)
	if v.Compatible || v.Reason != ReasonRank {
		t.Fatalf("got %+v, want rank rejection", v)
	}
}

func TestCheck_DateWindowBoundary(t *testing.T) {
	tests := []struct {
		name    string
		joining time.Time
		want    bool
	}{
		{"14 days after release", date(2024, 7, 15), true},
		{"exactly 15 days after", date(2024, 7, 16), true},
		{"16 days after release", date(2024, 7, 17), false},
		{"15 days before", date(2024, 6, 16), true},
		{"16 days before", date(2024, 6, 15), false},
		{"late in the day still counts as the same date", time.Date(2024, 7, 16, 23, 59, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ship, so, land, lo := scenarioA()
			land.ExpectedJoiningDate = tt.joining
			if got := IsCompatible(FromShip(ship, so, land, lo), CompanyRelaxed); got != tt.want {
				t.Errorf("IsCompatible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck_BothDirectionsAgree(t *testing.T) {
	mutations := []struct {
		name string
		mut  func(*domain.ShipAssignment, *domain.UserProfile, *domain.LandAssignment, *domain.UserProfile)
	}{
		{"unchanged", func(*domain.ShipAssignment, *domain.UserProfile, *domain.LandAssignment, *domain.UserProfile) {}},
		{"fleet differs", func(s *domain.ShipAssignment, _ *domain.UserProfile, l *domain.LandAssignment, _ *domain.UserProfile) {
			l.FleetType = "Bulk"
		}},
		{"company substring", func(s *domain.ShipAssignment, _ *domain.UserProfile, l *domain.LandAssignment, _ *domain.UserProfile) {
			l.Company = "Acme Shipping"
		}},
		{"late joining", func(_ *domain.ShipAssignment, _ *domain.UserProfile, l *domain.LandAssignment, _ *domain.UserProfile) {
			l.ExpectedJoiningDate = date(2024, 9, 1)
		}},
		{"no onboard date", func(s *domain.ShipAssignment, _ *domain.UserProfile, _ *domain.LandAssignment, _ *domain.UserProfile) {
			s.DateOfOnboard = time.Time{}
		}},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			ship, so, land, lo := scenarioA()
			m.mut(ship, so, land, lo)
			for _, mode := range []CompanyMode{CompanyRelaxed, CompanyStrict} {
				a := Check(FromShip(ship, so, land, lo), mode)
				b := Check(FromLand(land, lo, ship, so), mode)
				if a != b {
					t.Errorf("mode %d: ship side %+v, land side %+v", mode, a, b)
				}
			}
		})
	}
}

func TestCheck_FleetAndCompanyRules(t *testing.T) {
	tests := []struct {
		name        string
		shipFleet   string
		landFleet   string
		shipCompany string
		landCompany string
		mode        CompanyMode
		want        Reason
	}{
		{"fleet substring", "Oil Tanker", "tanker", "Acme", "Acme", CompanyRelaxed, ReasonNone},
		{"empty land fleet", "Tanker", "", "Acme", "Acme", CompanyRelaxed, ReasonFleet},
		{"no ship company is a wildcard", "Tanker", "Tanker", "", "Other", CompanyRelaxed, ReasonNone},
		{"relaxed company substring", "Tanker", "Tanker", "Acme", "acme shipping", CompanyRelaxed, ReasonNone},
		{"strict company rejects substring", "Tanker", "Tanker", "Acme", "Acme Shipping", CompanyStrict, ReasonCompany},
		{"strict company ignores case", "Tanker", "Tanker", "ACME", "acme", CompanyStrict, ReasonNone},
		{"different company", "Tanker", "Tanker", "Acme", "Globex", CompanyRelaxed, ReasonCompany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ship, so, land, lo := scenarioA()
			ship.FleetType, so.FleetType = tt.shipFleet, tt.shipFleet
			land.FleetType, lo.FleetType = tt.landFleet, tt.landFleet
			ship.Company = tt.shipCompany
			land.Company, lo.Company = tt.landCompany, tt.landCompany
			if got := Check(FromShip(ship, so, land, lo), tt.mode).Reason; got != tt.want {
				t.Errorf("reason = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheck_FallsBackToOwnerProfile(t *testing.T) {
	ship, so, land, lo := scenarioA()
	ship.FleetType, ship.Rank = "", ""
	land.FleetType, land.Company = "", ""
	if v := Check(FromShip(ship, so, land, lo), CompanyRelaxed); !v.Compatible {
		t.Fatalf("expected profile fallback to match, got %q", v.Reason)
	}
	if v := Check(FromShip(ship, nil, land, lo), CompanyRelaxed); v.Reason != ReasonFleet {
		t.Errorf("without owner profile: reason %q, want fleet", v.Reason)
	}
}

func TestCheck_MissingData(t *testing.T) {
	ship, so, land, lo := scenarioA()
	if v := Check(Pair{}, CompanyRelaxed); v.Reason != ReasonMissing {
		t.Errorf("empty pair: %+v", v)
	}
	land.ExpectedJoiningDate = time.Time{}
	if v := Check(FromShip(ship, so, land, lo), CompanyRelaxed); v.Reason != ReasonMissing {
		t.Errorf("no joining date: %+v", v)
	}
	_, _, land, _ = scenarioA()
	if v := Check(FromShip(ship, so, land, nil), CompanyRelaxed); v.Reason != ReasonRank {
		t.Errorf("no land owner rank: %+v", v)
	}
}
