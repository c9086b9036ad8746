package calendar

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func dateGen() *rapid.Generator[time.Time] {
	return rapid.Custom(func(t *rapid.T) time.Time {
		offset := rapid.IntRange(0, 3*365).Draw(t, "offset")
		return Date(2023, time.January, 1).AddDate(0, 0, offset)
	})
}

func calendarGen() *rapid.Generator[*Calendar] {
	return rapid.Custom(func(t *rapid.T) *Calendar {
		c := New()
		days := rapid.SliceOfNDistinct(rapid.IntRange(0, 6), 1, 7, rapid.ID[int]).Draw(t, "days")
		weekdays := make([]time.Weekday, len(days))
		for i, d := range days {
			weekdays[i] = time.Weekday(d)
		}
		if err := c.SetWorkingDays(weekdays); err != nil {
			t.Fatalf("SetWorkingDays: %v", err)
		}
		c.SetHoursPerDay(rapid.Float64Range(1, 12).Draw(t, "hours"))
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "holidays"); i < n; i++ {
			c.AddHoliday(dateGen().Draw(t, "holiday"))
		}
		return c
	})
}

// Working hours divided by hours-per-day always equals the working-day count.
func TestProperty_WorkingHoursMatchDays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := calendarGen().Draw(rt, "cal")
		s := dateGen().Draw(rt, "start")
		e := s.AddDate(0, 0, rapid.IntRange(-10, 60).Draw(rt, "span"))

		days := c.WorkingDays(s, e)
		hours := c.WorkingHours(s, e, 0)
		if got := hours / c.HoursPerDay(); int(got+0.5) != days {
			rt.Fatalf("hours/hpd = %v, days = %d", got, days)
		}
	})
}

// A span produced by FinishFrom always contains exactly the requested number
// of working days, and StartFrom inverts it.
func TestProperty_FinishFromRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := calendarGen().Draw(rt, "cal")
		s := dateGen().Draw(rt, "start")
		n := rapid.IntRange(1, 40).Draw(rt, "days")

		end := c.FinishFrom(s, n)
		if got := c.WorkingDays(s, end); got != n {
			rt.Fatalf("WorkingDays(%s, FinishFrom) = %d, want %d", s.Format(isoLayout), got, n)
		}
		if !c.IsWorkingDay(end) {
			rt.Fatalf("FinishFrom landed on non-working day %s", end.Format(isoLayout))
		}
		if c.IsWorkingDay(s) {
			if back := c.StartFrom(end, n); !back.Equal(s) {
				rt.Fatalf("StartFrom(FinishFrom(%s)) = %s", s.Format(isoLayout), back.Format(isoLayout))
			}
		}
	})
}

// Working-day lags are reversible when both endpoints are working days.
func TestProperty_LagInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := calendarGen().Draw(rt, "cal")
		s := c.NextWorkingDay(dateGen().Draw(rt, "start"))
		n := rapid.IntRange(-20, 20).Draw(rt, "lag")

		there := c.Lag(s, n)
		if back := c.Lag(there, -n); !back.Equal(s) {
			rt.Fatalf("Lag(Lag(%s, %d), %d) = %s", s.Format(isoLayout), n, -n, back.Format(isoLayout))
		}
		if got := c.WorkingDaysBetween(s, there); got != n {
			rt.Fatalf("WorkingDaysBetween = %d, want %d", got, n)
		}
	})
}
