package matching

import (
	"testing"

	"github.com/crewrelief/crewrelief/internal/domain"
)

func TestCanSeeContact(t *testing.T) {
	tests := []struct {
		name                 string
		seekerVisible        bool
		seekerEmail          bool
		candidateVisible     bool
		candidateEmail       bool
		candidatePhone       bool
		wantEmail, wantPhone bool
	}{
		{"everyone shares", true, true, true, true, true, true, true},
		{"hidden seeker sees nothing", false, true, true, true, true, false, false},
		{"hidden candidate", true, true, false, true, true, false, false},
		{"candidate hides phone", true, true, true, true, false, true, false},
		{"seeker hides email loses email", true, false, true, true, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeker := domain.NewDefaultProfile("s", "s@example.com")
			seeker.IsProfileVisible = tt.seekerVisible
			seeker.ShowEmailToOthers = tt.seekerEmail
			cand := domain.NewDefaultProfile("c", "c@example.com")
			cand.IsProfileVisible = tt.candidateVisible
			cand.ShowEmailToOthers = tt.candidateEmail
			cand.ShowPhoneToOthers = tt.candidatePhone
			if got := CanSeeContact(seeker, cand, ContactEmail); got != tt.wantEmail {
				t.Errorf("email = %v, want %v", got, tt.wantEmail)
			}
			if got := CanSeeContact(seeker, cand, ContactPhone); got != tt.wantPhone {
				t.Errorf("phone = %v, want %v", got, tt.wantPhone)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	seeker := domain.NewDefaultProfile("s", "s@example.com")
	cand := domain.NewDefaultProfile("c", "c@example.com")
	cand.Name, cand.MobileNumber = "Ana", "+100"
	cand.ShowPhoneToOthers = false
	land := domain.NewLandAssignment("c")
	land.Email, land.MobileNumber = "c@example.com", "+100"

	out := Redact(seeker, Match{Kind: domain.KindLand, Land: land, Profile: cand})
	if out.Profile.Email != "c@example.com" || out.Land.Email != "c@example.com" {
		t.Error("email should stay visible")
	}
	if out.Profile.MobileNumber != "" || out.Land.MobileNumber != "" {
		t.Error("phone should be redacted on profile and assignment")
	}
	if out.Profile.Name != "Ana" {
		t.Error("identity should stay visible")
	}
	if cand.MobileNumber != "+100" || land.MobileNumber != "+100" {
		t.Error("Redact must not modify its input")
	}
}
