package matching

import (
	"sync"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// Tracker keeps the latest committed search result per seeker. A search that
// was superseded by a newer Begin for the same seeker cannot overwrite it.
type Tracker struct {
	mu      sync.Mutex
	gens    map[domain.UserID]uint64
	results map[domain.UserID]*FindMatchesResult
}

func NewTracker() *Tracker {
	return &Tracker{
		gens:    make(map[domain.UserID]uint64),
		results: make(map[domain.UserID]*FindMatchesResult),
	}
}

// Begin starts a new search generation for seeker.
func (t *Tracker) Begin(seeker domain.UserID) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[seeker]++
	return t.gens[seeker]
}

// Commit stores res if gen is still the newest generation. Reports whether it did.
func (t *Tracker) Commit(seeker domain.UserID, gen uint64, res *FindMatchesResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gens[seeker] != gen {
		return false
	}
	t.results[seeker] = res
	return true
}

// Latest returns the last committed result, or nil.
func (t *Tracker) Latest(seeker domain.UserID) *FindMatchesResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.results[seeker]
}

// Forget drops all state for seeker (account deletion).
func (t *Tracker) Forget(seeker domain.UserID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.gens, seeker)
	delete(t.results, seeker)
}
