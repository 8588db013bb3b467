package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/profile"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/memory"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/repository"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func setup(t *testing.T) (*repository.ProfileRepository, *repository.AssignmentRepository) {
	t.Helper()
	store, err := memory.NewDocumentStore()
	if err != nil {
		t.Fatal(err)
	}
	return repository.NewProfileRepository(store), repository.NewAssignmentRepository(store)
}

func seedShip(t *testing.T, profiles *repository.ProfileRepository, assignments *repository.AssignmentRepository, id domain.UserID) {
	t.Helper()
	ctx := context.Background()
	p := domain.NewDefaultProfile(id, string(id)+"@example.com")
	p.Status, p.Company, p.FleetType, p.Rank, p.MobileNumber = domain.StatusOnShip, "Maersk", "Container", "Chief Officer", "+100"
	if err := profiles.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	ship := &domain.ShipAssignment{
		OwnerID: id, ShipName: "Emma", Company: "Maersk", FleetType: "Container", Rank: "Chief Officer",
		Email: p.Email, MobileNumber: p.MobileNumber, ContractLengthMonths: 6,
		DateOfOnboard: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), IsPublic: true,
	}
	if err := assignments.SaveShip(ctx, ship); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateProfile_ResyncsActiveAssignment(t *testing.T) {
	ctx := context.Background()
	profiles, assignments := setup(t)
	seedShip(t, profiles, assignments, "ana")

	uc := profile.NewUpdateProfile(profiles, assignments, zerolog.Nop())
	res, err := uc.Execute(ctx, profile.UpdateProfileInput{CallerID: "ana", Patch: ports.ProfilePatch{
		Rank:              strPtr("  Master "),
		ShowPhoneToOthers: boolPtr(false),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Warnings.Empty() {
		t.Errorf("warnings = %v", res.Warnings.Messages())
	}
	if res.Profile.Rank != "Master" {
		t.Errorf("rank = %q", res.Profile.Rank)
	}
	ship, err := assignments.GetShip(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if ship.Rank != "Master" || ship.MobileNumber != "" || ship.Email == "" {
		t.Errorf("ship after resync = %+v", ship)
	}
}

func TestUpdateProfile_Rejects(t *testing.T) {
	profiles, assignments := setup(t)
	uc := profile.NewUpdateProfile(profiles, assignments, zerolog.Nop())
	onShip := domain.StatusOnShip
	tests := []struct {
		name  string
		input profile.UpdateProfileInput
		want  error
	}{
		{"no caller", profile.UpdateProfileInput{}, domerrors.ErrUnauthenticated},
		{"status patch", profile.UpdateProfileInput{CallerID: "ana", Patch: ports.ProfilePatch{Status: &onShip}}, domerrors.ErrValidation},
		{"missing profile", profile.UpdateProfileInput{CallerID: "ghost", Patch: ports.ProfilePatch{Name: strPtr("x")}}, domerrors.ErrProfileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Execute(context.Background(), tt.input); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestViewProfile(t *testing.T) {
	ctx := context.Background()
	profiles, assignments := setup(t)
	seedShip(t, profiles, assignments, "ana")
	viewer := domain.NewDefaultProfile("bo", "bo@example.com")
	viewer.ShowPhoneToOthers = false
	if err := profiles.Save(ctx, viewer); err != nil {
		t.Fatal(err)
	}
	uc := profile.NewViewProfile(profiles, assignments)

	m, err := uc.Execute(ctx, profile.ViewProfileInput{ViewerID: "bo", TargetID: "ana"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Ship == nil || m.Kind != domain.KindShip {
		t.Fatalf("match = %+v", m)
	}
	if m.Profile.Email == "" || m.Ship.Email == "" {
		t.Error("email is shared both ways and should be visible")
	}
	if m.Profile.MobileNumber != "" || m.Ship.MobileNumber != "" {
		t.Error("phone must be hidden when the viewer does not share theirs")
	}

	self, err := uc.Execute(ctx, profile.ViewProfileInput{ViewerID: "ana", TargetID: "ana"})
	if err != nil || self.Profile.MobileNumber == "" {
		t.Errorf("own view should be unredacted: %+v, %v", self, err)
	}

	if err := profiles.Update(ctx, "ana", ports.ProfilePatch{IsProfileVisible: boolPtr(false)}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Execute(ctx, profile.ViewProfileInput{ViewerID: "bo", TargetID: "ana"}); !errors.Is(err, domerrors.ErrProfileNotFound) {
		t.Errorf("hidden profile: got %v", err)
	}
}

func TestGetAssignments(t *testing.T) {
	ctx := context.Background()
	profiles, assignments := setup(t)
	seedShip(t, profiles, assignments, "ana")
	got, err := profile.NewGetAssignments(profiles, assignments).Execute(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusOnShip || got.Ship == nil || got.Land != nil {
		t.Errorf("assignments = %+v", got)
	}
	if _, err := profile.NewGetProfile(profiles).Execute(ctx, ""); !errors.Is(err, domerrors.ErrUnauthenticated) {
		t.Errorf("anonymous: got %v", err)
	}
}
