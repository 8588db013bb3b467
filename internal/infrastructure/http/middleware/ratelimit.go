package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitConfig holds request budgets in limiter's "<count>-<S|M|H|D>"
// notation. An empty budget turns that limit off.
type RateLimitConfig struct {
	RatePerIP   string // every route
	RatePerUser string // match searches only
}

// NewIPRateLimiter budgets requests per client address.
func NewIPRateLimiter(budget string) (func(next http.Handler) http.Handler, error) {
	return newBudget(budget)
}

// NewUserRateLimiter budgets requests per signed-in caller and must run after
// AuthValidator. A match search fans out to one profile read per candidate
// owner, so searches get a budget of their own.
func NewUserRateLimiter(budget string) (func(next http.Handler) http.Handler, error) {
	return newBudget(budget,
		stdlib.WithKeyGetter(func(r *http.Request) string {
			if caller := CallerID(r.Context()); !caller.IsZero() {
				return "user:" + caller.String()
			}
			return ""
		}),
		// Unauthenticated requests never reach this far; pass them through.
		stdlib.WithExcludedKey(func(key string) bool { return key == "" }),
	)
}

func newBudget(budget string, opts ...stdlib.Option) (func(next http.Handler) http.Handler, error) {
	if budget == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	rate, err := limiter.NewRateFromFormatted(budget)
	if err != nil {
		return nil, err
	}
	opts = append(opts, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
	}))
	return stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate), opts...).Handler, nil
}
