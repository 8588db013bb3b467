package lockout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

// DefaultCooldown applies when the configured cooldown is not positive.
const DefaultCooldown = 15 * time.Minute

// strikes is one email's run of failed sign-ins.
type strikes struct {
	count int
	until time.Time // zero while the email is still below the limit
}

func (s *strikes) remaining(now time.Time) time.Duration {
	if s.until.IsZero() {
		return 0
	}
	return s.until.Sub(now)
}

// SignInLockout counts failed sign-ins per normalized email and refuses
// further attempts for a cooldown once the limit is hit. State is process
// local; run one instance or accept per-instance counts.
type SignInLockout struct {
	mu       sync.Mutex
	byEmail  map[string]*strikes
	limit    int
	cooldown time.Duration
	now      func() time.Time
}

// NewSignInLockout locks an email after limit consecutive failures.
// A limit of zero or less turns lockout off.
func NewSignInLockout(limit, cooldownSeconds int) *SignInLockout {
	cooldown := time.Duration(cooldownSeconds) * time.Second
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &SignInLockout{
		byEmail:  make(map[string]*strikes),
		limit:    limit,
		cooldown: cooldown,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *SignInLockout) IsLocked(ctx context.Context, email string) (bool, int) {
	if l.limit <= 0 {
		return false, 0
	}
	l.mu.Lock()
	st := l.byEmail[normalizeEmail(email)]
	l.mu.Unlock()
	if st == nil {
		return false, 0
	}
	left := st.remaining(l.now())
	if left <= 0 {
		return false, 0
	}
	// Round up so a client never retries a moment too early.
	return true, int((left + time.Second - 1) / time.Second)
}

func (l *SignInLockout) RecordFailure(ctx context.Context, email string) {
	if l.limit <= 0 {
		return
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)
	addr := normalizeEmail(email)
	st, ok := l.byEmail[addr]
	if !ok {
		st = &strikes{}
		l.byEmail[addr] = st
	}
	st.count++
	if st.count >= l.limit {
		st.until = now.Add(l.cooldown)
	}
}

func (l *SignInLockout) RecordSuccess(ctx context.Context, email string) {
	if l.limit <= 0 {
		return
	}
	l.mu.Lock()
	delete(l.byEmail, normalizeEmail(email))
	l.mu.Unlock()
}

// sweep forgets emails whose lock has run out, so the next failure counts from one.
func (l *SignInLockout) sweep(now time.Time) {
	for addr, st := range l.byEmail {
		if !st.until.IsZero() && st.remaining(now) <= 0 {
			delete(l.byEmail, addr)
		}
	}
}

var _ ports.LoginLockoutStore = (*SignInLockout)(nil)
