package matching

import (
	"time"

	"github.com/crewrelief/crewrelief/internal/domain"
)

// Month-mode pre-filter margins, in months around the target month.
const (
	monthWindowBefore = 2
	monthWindowAfter  = 3
)

// Window is an inclusive range of UTC calendar days.
type Window struct {
	From time.Time
	To   time.Time
}

// ExactWindow is center ± days.
func ExactWindow(center time.Time, days int) Window {
	c := domain.CalendarDay(center)
	return Window{From: c.AddDate(0, 0, -days), To: c.AddDate(0, 0, days)}
}

// MonthWindow runs from the first day two months before month through the
// last day three months after it. Looser than ExactWindow on purpose; it is
// a pre-filter when only the month is known.
func MonthWindow(month time.Time) Window {
	y, m, _ := month.UTC().Date()
	from := time.Date(y, m-monthWindowBefore, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y, m+monthWindowAfter+1, 0, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: to}
}

// Contains reports whether t's calendar day falls inside the window.
// A zero t is never contained.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := domain.CalendarDay(t)
	return !d.Before(w.From) && !d.After(w.To)
}
