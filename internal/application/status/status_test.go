package status_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/memory"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/repository"
)

var errBackend = errors.New("backend unavailable")

// faultyAssignments fails the operations switched on.
type faultyAssignments struct {
	ports.AssignmentRepository
	failDelete bool
	failSave   bool
}

func (f *faultyAssignments) DeleteAllExcept(ctx context.Context, kind domain.AssignmentKind, owner domain.UserID, keepNewest bool) (int, error) {
	if f.failDelete {
		return 0, domerrors.NewStoreError("batch delete", "assignments", errBackend)
	}
	return f.AssignmentRepository.DeleteAllExcept(ctx, kind, owner, keepNewest)
}

func (f *faultyAssignments) SaveShip(ctx context.Context, a *domain.ShipAssignment) error {
	if f.failSave {
		return domerrors.NewStoreError("set", ports.CollectionShipAssignments, errBackend)
	}
	return f.AssignmentRepository.SaveShip(ctx, a)
}

type env struct {
	store       *memory.DocumentStore
	profiles    *repository.ProfileRepository
	assignments *faultyAssignments
	change      *status.ChangeStatus
	cleanup     *status.CleanupDuplicates
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := memory.NewDocumentStore()
	if err != nil {
		t.Fatal(err)
	}
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	profiles := repository.NewProfileRepository(store)
	assignments := &faultyAssignments{AssignmentRepository: repository.NewAssignmentRepository(store)}
	return &env{
		store:       store,
		profiles:    profiles,
		assignments: assignments,
		change:      status.NewChangeStatus(profiles, assignments, nil, zerolog.Nop()),
		cleanup:     status.NewCleanupDuplicates(profiles, assignments, zerolog.Nop()),
	}
}

func (e *env) user(t *testing.T, id domain.UserID) *domain.UserProfile {
	t.Helper()
	p := domain.NewDefaultProfile(id, string(id)+"@example.com")
	p.Rank, p.FleetType = "Captain", "Tanker"
	p.MobileNumber = "+100"
	if err := e.profiles.Save(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func shipFor(owner domain.UserID) *domain.ShipAssignment {
	a := domain.NewShipAssignment(owner)
	a.ShipName, a.Company = "MV Aurora", "Acme"
	a.DateOfOnboard = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return a
}

func landFor(owner domain.UserID) *domain.LandAssignment {
	a := domain.NewLandAssignment(owner)
	a.LastVessel = "MV Aurora"
	a.ExpectedJoiningDate = time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	return a
}

func (e *env) count(t *testing.T, coll string, owner domain.UserID) int {
	t.Helper()
	docs, err := e.store.Query(context.Background(), coll, ports.Eq("userIdentifier", owner.String()))
	if err != nil {
		t.Fatal(err)
	}
	return len(docs)
}

func TestChangeStatus_ExactlyOneKindAfterTransition(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")

	steps := []struct {
		from, to domain.Status
	}{
		{domain.StatusOnLand, domain.StatusOnShip},
		{domain.StatusOnShip, domain.StatusOnLand},
		{domain.StatusOnLand, domain.StatusOnShip},
		// A stale From must not leave a land record behind.
		{domain.StatusOnLand, domain.StatusOnShip},
	}
	for i, s := range steps {
		in := status.ChangeStatusInput{CallerID: "u1", From: s.from, To: s.to}
		if s.to == domain.StatusOnShip {
			in.Ship = shipFor("u1")
		} else {
			in.Land = landFor("u1")
		}
		res, err := e.change.Execute(ctx, in)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !res.Warnings.Empty() {
			t.Fatalf("step %d: warnings %v", i, res.Warnings.Messages())
		}
		ships := e.count(t, ports.CollectionShipAssignments, "u1")
		lands := e.count(t, ports.CollectionLandAssignments, "u1")
		if ships+lands != 1 || (s.to == domain.StatusOnShip) != (ships == 1) {
			t.Fatalf("step %d: ships=%d lands=%d after moving to %s", i, ships, lands, s.to)
		}
		p, _ := e.profiles.Get(ctx, "u1")
		if p.Status != s.to {
			t.Fatalf("step %d: profile status %s, want %s", i, p.Status, s.to)
		}
	}
}

func TestChangeStatus_SameSaveTwiceKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")
	for i := 0; i < 2; i++ {
		if _, err := e.change.Execute(ctx, status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: shipFor("u1")}); err != nil {
			t.Fatal(err)
		}
	}
	if n := e.count(t, ports.CollectionShipAssignments, "u1"); n != 1 {
		t.Errorf("ship records = %d, want 1", n)
	}
}

func TestChangeStatus_PropagatesProfileFields(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.user(t, "u1")
	p.ShowPhoneToOthers = false
	_ = e.profiles.Save(ctx, p)

	res, err := e.change.Execute(ctx, status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: shipFor("u1")})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.assignments.GetShip(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Rank != "Captain" || got.FleetType != "Tanker" || got.Email != "u1@example.com" {
		t.Errorf("propagated ship = %+v", got)
	}
	if got.MobileNumber != "" {
		t.Error("phone copied although the user hides it")
	}
	// The profile had no company, so it takes the assignment's.
	if res.Profile.Company != "Acme" {
		t.Errorf("profile company = %q, want synced Acme", res.Profile.Company)
	}
	stored, _ := e.profiles.Get(ctx, "u1")
	if stored.Company != "Acme" {
		t.Errorf("stored profile company = %q", stored.Company)
	}
}

func TestChangeStatus_DeleteFailureIsReportedNotFatal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")
	e.assignments.failDelete = true

	res, err := e.change.Execute(ctx, status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: shipFor("u1")})
	if err != nil {
		t.Fatalf("delete failure must not block the save: %v", err)
	}
	if res.Warnings.Empty() || res.Warnings.Steps[0].Step != status.StepDeletePrevious {
		t.Errorf("warnings = %v", res.Warnings.Messages())
	}
	if !errors.Is(res.Warnings.Steps[0].Err, domerrors.ErrStore) {
		t.Errorf("warning err = %v, want store error", res.Warnings.Steps[0].Err)
	}
	if n := e.count(t, ports.CollectionShipAssignments, "u1"); n != 1 {
		t.Errorf("ship records = %d, want 1", n)
	}
}

func TestChangeStatus_SaveFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")
	e.assignments.failSave = true

	_, err := e.change.Execute(ctx, status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: shipFor("u1")})
	if !errors.Is(err, domerrors.ErrSaveFailed) || !errors.Is(err, domerrors.ErrStore) {
		t.Fatalf("err = %v, want save failed wrapping a store error", err)
	}
	// No rollback: the profile flip stays until a retry succeeds.
	p, _ := e.profiles.Get(ctx, "u1")
	if p.Status != domain.StatusOnShip {
		t.Errorf("profile status = %s", p.Status)
	}
	e.assignments.failSave = false
	if _, err := e.change.Execute(ctx, status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: shipFor("u1")}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n := e.count(t, ports.CollectionShipAssignments, "u1"); n != 1 {
		t.Errorf("ship records after retry = %d, want 1", n)
	}
}

func TestChangeStatus_RejectsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")
	noDate := shipFor("u1")
	noDate.DateOfOnboard = time.Time{}

	tests := []struct {
		name string
		in   status.ChangeStatusInput
		want error
	}{
		{"no caller", status.ChangeStatusInput{To: domain.StatusOnShip, Ship: shipFor("u1")}, domerrors.ErrUnauthenticated},
		{"bad status", status.ChangeStatusInput{CallerID: "u1", To: "atSea", Ship: shipFor("u1")}, domerrors.ErrValidation},
		{"missing record", status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnLand, Ship: shipFor("u1")}, domerrors.ErrValidation},
		{"invalid record", status.ChangeStatusInput{CallerID: "u1", To: domain.StatusOnShip, Ship: noDate}, domerrors.ErrValidation},
		{"no profile", status.ChangeStatusInput{CallerID: "ghost", To: domain.StatusOnShip, Ship: shipFor("ghost")}, domerrors.ErrProfileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.change.Execute(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	p, _ := e.profiles.Get(ctx, "u1")
	if p.Status != domain.StatusOnLand {
		t.Error("rejected input changed the profile")
	}
}

func TestCleanup_DeleteAllExceptKeepsNewest(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for _, id := range []string{"a", "b", "c"} {
		_ = e.store.Set(ctx, ports.CollectionShipAssignments, id, map[string]any{"userIdentifier": "u1"})
	}
	n, err := e.cleanup.DeleteAllExcept(ctx, "u1", domain.KindShip, true)
	if err != nil || n != 2 {
		t.Fatalf("deleted %d, err %v", n, err)
	}
	if _, err := e.store.Get(ctx, ports.CollectionShipAssignments, "c"); err != nil {
		t.Errorf("newest record should survive: %v", err)
	}
}

func TestCleanup_ReconcileRepairsDrift(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1") // profile says onLand
	if err := e.assignments.SaveShip(ctx, shipFor("u1")); err != nil {
		t.Fatal(err)
	}
	// A legacy duplicate created later than the active record.
	_ = e.store.Set(ctx, ports.CollectionShipAssignments, "legacy", map[string]any{"userIdentifier": "u1"})

	res, err := e.cleanup.Reconcile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 1 || !res.StatusRepaired || res.Status != domain.StatusOnShip {
		t.Errorf("reconcile = %+v", res)
	}
	if _, err := e.store.Get(ctx, ports.CollectionShipAssignments, "u1"); err != nil {
		t.Error("the record keyed by the user id must be kept over a newer legacy copy")
	}
	p, _ := e.profiles.Get(ctx, "u1")
	if p.Status != domain.StatusOnShip {
		t.Errorf("profile status = %s", p.Status)
	}
}

func TestCleanup_ReconcileResolvesBothKinds(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.user(t, "u1")
	_ = e.assignments.SaveShip(ctx, shipFor("u1"))
	_ = e.assignments.SaveLand(ctx, landFor("u1"))

	res, err := e.cleanup.Reconcile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusRepaired || res.Status != domain.StatusOnLand {
		t.Errorf("reconcile = %+v", res)
	}
	if e.count(t, ports.CollectionShipAssignments, "u1") != 0 || e.count(t, ports.CollectionLandAssignments, "u1") != 1 {
		t.Error("profile status should decide which kind survives")
	}
}

func TestClearAssignments(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_ = e.assignments.SaveShip(ctx, shipFor("u1"))
	_ = e.assignments.SaveLand(ctx, landFor("u1"))
	n, err := status.ClearAssignments(ctx, e.assignments, "u1")
	if err != nil || n != 2 {
		t.Fatalf("cleared %d, err %v", n, err)
	}
}
