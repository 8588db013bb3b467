package matching

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		month    time.Time
		from, to time.Time
	}{
		{date(2024, 7, 1), date(2024, 5, 1), date(2024, 10, 31)},
		{date(2024, 1, 20), date(2023, 11, 1), date(2024, 4, 30)},
		{date(2024, 11, 5), date(2024, 9, 1), date(2025, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.month.Format("2006-01"), func(t *testing.T) {
			w := MonthWindow(tt.month)
			if !w.From.Equal(tt.from) || !w.To.Equal(tt.to) {
				t.Errorf("MonthWindow = %s..%s, want %s..%s", w.From.Format(time.DateOnly), w.To.Format(time.DateOnly),
					tt.from.Format(time.DateOnly), tt.to.Format(time.DateOnly))
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	w := ExactWindow(date(2024, 7, 1), 15)
	cases := map[string]struct {
		t    time.Time
		want bool
	}{
		"first day":  {date(2024, 6, 16), true},
		"last day":   {time.Date(2024, 7, 16, 18, 0, 0, 0, time.UTC), true},
		"day after":  {date(2024, 7, 17), false},
		"zero time":  {time.Time{}, false},
		"other zone": {time.Date(2024, 7, 17, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)), true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := w.Contains(c.t); got != c.want {
				t.Errorf("Contains(%s) = %v, want %v", c.t, got, c.want)
			}
		})
	}
}
