package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

const DefaultFanOutLimit = 16

// Search modes, used as metric labels and echoed in results.
const (
	ModeExact   = "exact"
	ModeMonth   = "month"
	ModeDerived = "derived"
	ModeNone    = "none"
	ModeHidden  = "hidden"
)

// Criteria narrows a search. Empty Company and Fleet fall back to the seeker's
// profile. ExactDate wins over Month; with neither, the date comes from the
// seeker's own active assignment.
type Criteria struct {
	Company   string
	Fleet     string
	ExactDate *time.Time
	Month     *time.Time
	AnyStatus bool
}

type FindMatchesInput struct {
	SeekerID domain.UserID
	Criteria Criteria
}

type FindMatchesResult struct {
	Seeker      *domain.UserProfile
	Mode        string
	Window      *Window
	Matches     []Match
	Dropped     int
	Generation  uint64
	Superseded  bool
	GeneratedAt time.Time
}

type FindMatches struct {
	profiles    ports.ProfileRepository
	assignments ports.AssignmentRepository
	tracker     *Tracker
	metrics     ports.MatchMetrics
	log         zerolog.Logger
	fanOut      int
	windowDays  int
}

func NewFindMatches(profiles ports.ProfileRepository, assignments ports.AssignmentRepository, tracker *Tracker, metrics ports.MatchMetrics, log zerolog.Logger, fanOut, windowDays int) *FindMatches {
	if fanOut <= 0 {
		fanOut = DefaultFanOutLimit
	}
	if windowDays <= 0 {
		windowDays = CanonicalWindowDays
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &FindMatches{
		profiles:    profiles,
		assignments: assignments,
		tracker:     tracker,
		metrics:     metrics,
		log:         log,
		fanOut:      fanOut,
		windowDays:  windowDays,
	}
}

// Tracker exposes the generation tracker so handlers can serve the latest result.
func (uc *FindMatches) Tracker() *Tracker { return uc.tracker }

// candidate is one public record before its owner profile is known.
type candidate struct {
	kind domain.AssignmentKind
	ship *domain.ShipAssignment
	land *domain.LandAssignment
}

func (c candidate) owner() domain.UserID {
	if c.ship != nil {
		return c.ship.OwnerID
	}
	return c.land.OwnerID
}

func (c candidate) company() string {
	if c.ship != nil {
		return c.ship.Company
	}
	return c.land.Company
}

func (c candidate) fleet() string {
	if c.ship != nil {
		return c.ship.FleetType
	}
	return c.land.FleetType
}

// date is the release date for ships and the joining date for land records.
func (c candidate) date() time.Time {
	if c.ship != nil {
		return c.ship.ExpectedReleaseDate()
	}
	return c.land.ExpectedJoiningDate
}

func (c candidate) id() string {
	if c.ship != nil {
		return c.ship.ID
	}
	return c.land.ID
}

func (c candidate) createdAt() time.Time {
	if c.ship != nil {
		return c.ship.CreatedAt
	}
	return c.land.CreatedAt
}

// supersedes reports whether c should replace cur as its owner's record:
// the record keyed by the owner id wins, otherwise the newest.
func (c candidate) supersedes(cur candidate) bool {
	owner := c.owner().String()
	switch {
	case cur.id() == owner:
		return false
	case c.id() == owner:
		return true
	}
	return c.createdAt().After(cur.createdAt())
}

// seekerContext is the seeker's own state loaded once per search.
type seekerContext struct {
	profile *domain.UserProfile
	ship    *domain.ShipAssignment
	land    *domain.LandAssignment
}

func (uc *FindMatches) Execute(ctx context.Context, input FindMatchesInput) (*FindMatchesResult, error) {
	if input.SeekerID.IsZero() {
		return nil, domerrors.ErrUnauthenticated
	}
	seeker, err := uc.profiles.Get(ctx, input.SeekerID)
	if err != nil {
		return nil, err
	}
	gen := uc.tracker.Begin(seeker.ID)
	res := &FindMatchesResult{Seeker: seeker, Generation: gen, Matches: []Match{}}

	// Hidden seekers see nobody, so the store is not even queried.
	if !seeker.IsProfileVisible {
		res.Mode = ModeHidden
		return uc.finish(res), nil
	}

	sc, err := uc.loadSeeker(ctx, seeker)
	if err != nil {
		return nil, err
	}
	res.Mode, res.Window = uc.window(sc, input.Criteria)

	company := firstNonEmpty(input.Criteria.Company, seeker.Company)
	fleet := firstNonEmpty(input.Criteria.Fleet, seeker.FleetType)

	for _, kind := range targetKinds(seeker.Status, input.Criteria.AnyStatus) {
		cands, err := uc.listPublic(ctx, kind, seeker.ID)
		if err != nil {
			return nil, err
		}
		owners, dropped := uc.fetchOwners(ctx, cands)
		res.Dropped += dropped
		for _, c := range cands {
			p, ok := owners[c.owner()]
			if !ok {
				continue
			}
			if reason := uc.filter(sc, c, p, company, fleet, res.Window); reason != ReasonNone {
				uc.log.Debug().Str("seeker", seeker.ID.String()).Str("candidate", c.owner().String()).
					Str("kind", string(c.kind)).Str("reason", string(reason)).Msg("candidate rejected")
				continue
			}
			res.Matches = append(res.Matches, Redact(seeker, Match{Kind: c.kind, Ship: c.ship, Land: c.land, Profile: p}))
		}
	}
	return uc.finish(res), nil
}

func (uc *FindMatches) finish(res *FindMatchesResult) *FindMatchesResult {
	res.GeneratedAt = time.Now().UTC()
	res.Superseded = !uc.tracker.Commit(res.Seeker.ID, res.Generation, res)
	uc.metrics.SearchCompleted(res.Mode, len(res.Matches))
	return res
}

// loadSeeker reads the seeker's active assignment for their current status.
func (uc *FindMatches) loadSeeker(ctx context.Context, seeker *domain.UserProfile) (*seekerContext, error) {
	sc := &seekerContext{profile: seeker}
	var err error
	switch seeker.Status {
	case domain.StatusOnShip:
		sc.ship, err = uc.assignments.GetShip(ctx, seeker.ID)
	default:
		sc.land, err = uc.assignments.GetLand(ctx, seeker.ID)
	}
	if err != nil && !errors.Is(err, domerrors.ErrAssignmentNotFound) {
		return nil, err
	}
	return sc, nil
}

func (uc *FindMatches) window(sc *seekerContext, c Criteria) (string, *Window) {
	switch {
	case c.ExactDate != nil && !c.ExactDate.IsZero():
		w := ExactWindow(*c.ExactDate, uc.windowDays)
		return ModeExact, &w
	case c.Month != nil && !c.Month.IsZero():
		w := MonthWindow(*c.Month)
		return ModeMonth, &w
	}
	var target time.Time
	if sc.ship != nil {
		target = sc.ship.ExpectedReleaseDate()
	} else if sc.land != nil {
		target = sc.land.ExpectedJoiningDate
	}
	if target.IsZero() {
		return ModeNone, nil
	}
	w := ExactWindow(target, uc.windowDays)
	return ModeDerived, &w
}

// targetKinds lists the kinds to search, counterparts first.
func targetKinds(status domain.Status, anyStatus bool) []domain.AssignmentKind {
	if status == domain.StatusOnShip {
		if anyStatus {
			return []domain.AssignmentKind{domain.KindLand, domain.KindShip}
		}
		return []domain.AssignmentKind{domain.KindLand}
	}
	if anyStatus {
		return []domain.AssignmentKind{domain.KindShip, domain.KindLand}
	}
	return []domain.AssignmentKind{domain.KindShip}
}

// listPublic returns one public record per owner of kind, minus the seeker's
// own. Owners with leftover duplicates are represented by their active record.
func (uc *FindMatches) listPublic(ctx context.Context, kind domain.AssignmentKind, self domain.UserID) ([]candidate, error) {
	var all []candidate
	if kind == domain.KindShip {
		ships, err := uc.assignments.ListPublicShips(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range ships {
			all = append(all, candidate{kind: kind, ship: s})
		}
	} else {
		lands, err := uc.assignments.ListPublicLands(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range lands {
			all = append(all, candidate{kind: kind, land: l})
		}
	}

	out := make([]candidate, 0, len(all))
	index := make(map[domain.UserID]int, len(all))
	for _, c := range all {
		owner := c.owner()
		if owner == self || owner.IsZero() {
			continue
		}
		i, dup := index[owner]
		if !dup {
			index[owner] = len(out)
			out = append(out, c)
			continue
		}
		if c.supersedes(out[i]) {
			out[i] = c
		}
	}
	return out, nil
}

// fetchOwners loads every distinct owner profile in parallel and waits for all
// of them. A failed fetch drops that owner; it never fails the search.
func (uc *FindMatches) fetchOwners(ctx context.Context, cands []candidate) (map[domain.UserID]*domain.UserProfile, int) {
	ids := make([]domain.UserID, 0, len(cands))
	seen := make(map[domain.UserID]bool, len(cands))
	for _, c := range cands {
		if id := c.owner(); !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	var (
		mu      sync.Mutex
		owners  = make(map[domain.UserID]*domain.UserProfile, len(ids))
		dropped int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.fanOut)
	for _, id := range ids {
		g.Go(func() error {
			p, err := uc.profiles.Get(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				dropped++
				uc.metrics.CandidateDropped("profile_fetch")
				uc.log.Warn().Err(err).Str("candidate", id.String()).Msg("candidate dropped: profile fetch failed")
				return nil
			}
			owners[id] = p
			return nil
		})
	}
	_ = g.Wait()
	return owners, dropped
}

// filter applies the staged checks to one candidate and returns why it was
// rejected, or ReasonNone.
func (uc *FindMatches) filter(sc *seekerContext, c candidate, p *domain.UserProfile, company, fleet string, w *Window) Reason {
	if !CanSeeIdentity(p) {
		return ReasonHidden
	}
	// A ship with no company matches any company.
	candCompany := firstNonEmpty(c.company(), p.Company)
	if company != "" && !(c.ship != nil && candCompany == "") && !CompanyMatches(company, candCompany, CompanyRelaxed) {
		return ReasonCompany
	}
	if fleet != "" && !FleetMatches(fleet, firstNonEmpty(c.fleet(), p.FleetType)) {
		return ReasonFleet
	}
	if w != nil && !w.Contains(c.date()) {
		return ReasonDate
	}
	var v Verdict
	switch {
	case c.land != nil && sc.ship != nil:
		v = CheckWithin(FromShip(sc.ship, sc.profile, c.land, p), CompanyRelaxed, uc.windowDays)
	case c.ship != nil && sc.land != nil:
		v = CheckWithin(FromLand(sc.land, sc.profile, c.ship, p), CompanyRelaxed, uc.windowDays)
	default:
		return ReasonNone
	}
	return v.Reason
}
