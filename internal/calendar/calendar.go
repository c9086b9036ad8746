// Package calendar implements working-day arithmetic over a weekly working
// pattern, global holidays, and per-resource exception days. All dates are
// treated as calendar days; time of day is discarded.
package calendar

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// ErrNoWorkingDays is returned when a calendar would have no working weekday.
// Every stepping operation needs at least one to terminate.
var ErrNoWorkingDays = errors.New("calendar has no working days")

// ErrBadDayIndex is returned for a weekday index outside 0..6.
var ErrBadDayIndex = errors.New("weekday index out of range")

// isoLayout is the key format for holidays and exception entries.
const isoLayout = "2006-01-02"

// DefaultHoursPerDay is the working hours assumed when none are configured.
const DefaultHoursPerDay = 8.0

// LagMode selects how signed dependency lags are applied to dates.
type LagMode int

const (
	// LagWorkingDays steps lags over working days only.
	LagWorkingDays LagMode = iota
	// LagCalendarDays applies lags as raw calendar days.
	LagCalendarDays
)

// String returns the config spelling of the mode.
func (m LagMode) String() string {
	if m == LagCalendarDays {
		return "calendar"
	}
	return "working"
}

// ParseLagMode parses "working" or "calendar". The empty string means working.
func ParseLagMode(s string) (LagMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "working":
		return LagWorkingDays, nil
	case "calendar":
		return LagCalendarDays, nil
	default:
		return LagWorkingDays, fmt.Errorf("unknown lag mode %q", s)
	}
}

// Calendar is a working-time model. The zero value is not usable; call New.
type Calendar struct {
	workingDays [7]bool // indexed by time.Weekday
	hoursPerDay float64
	holidays    map[string]bool
	lagMode     LagMode
	logger      *slog.Logger
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithLogger sets the logger used for diagnostics such as malformed
// exception entries.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calendar) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLagMode sets how dependency lags are applied.
func WithLagMode(m LagMode) Option {
	return func(c *Calendar) { c.lagMode = m }
}

// New returns a Monday-to-Friday calendar with eight-hour days and no
// holidays, adjusted by opts.
func New(opts ...Option) *Calendar {
	c := &Calendar{
		hoursPerDay: DefaultHoursPerDay,
		holidays:    make(map[string]bool),
		logger:      slog.Default(),
	}
	for d := time.Monday; d <= time.Friday; d++ {
		c.workingDays[d] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day and location from t, keeping its calendar day.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DayIndex converts a weekday to the persisted index form, where 0 is
// Monday and 6 is Sunday.
func DayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// WeekdayAt is the inverse of DayIndex.
func WeekdayAt(i int) (time.Weekday, error) {
	if i < 0 || i > 6 {
		return time.Sunday, fmt.Errorf("%w: %d", ErrBadDayIndex, i)
	}
	return time.Weekday((i + 1) % 7), nil
}

// SetWorkingDays replaces the weekly working pattern.
func (c *Calendar) SetWorkingDays(days []time.Weekday) error {
	var next [7]bool
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: %d", ErrBadDayIndex, d)
		}
		next[d] = true
	}
	if next == [7]bool{} {
		return ErrNoWorkingDays
	}
	c.workingDays = next
	return nil
}

// WorkingWeekdays returns the working weekdays, Sunday first.
func (c *Calendar) WorkingWeekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.workingDays[d] {
			days = append(days, d)
		}
	}
	return days
}

// HoursPerDay returns the default working hours per day.
func (c *Calendar) HoursPerDay() float64 { return c.hoursPerDay }

// SetHoursPerDay sets the default working hours per day, clamped at zero.
func (c *Calendar) SetHoursPerDay(h float64) {
	c.hoursPerDay = max(0, h)
}

// LagMode returns how the calendar applies dependency lags.
func (c *Calendar) LagMode() LagMode { return c.lagMode }

// AddHoliday marks d as a global non-working day.
func (c *Calendar) AddHoliday(d time.Time) {
	c.holidays[d.Format(isoLayout)] = true
}

// RemoveHoliday clears a global non-working day.
func (c *Calendar) RemoveHoliday(d time.Time) {
	delete(c.holidays, d.Format(isoLayout))
}

// SetHolidays replaces the holiday set with ISO-formatted dates.
func (c *Calendar) SetHolidays(days []string) error {
	next := make(map[string]bool, len(days))
	for _, s := range days {
		d, err := time.Parse(isoLayout, strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("holiday %q: %w", s, err)
		}
		next[d.Format(isoLayout)] = true
	}
	c.holidays = next
	return nil
}

// Holidays returns the global non-working days as sorted ISO strings.
func (c *Calendar) Holidays() []string {
	out := make([]string, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// IsWorkingDay reports whether d is a working weekday and not a holiday.
func (c *Calendar) IsWorkingDay(d time.Time) bool {
	return c.IsWorkingDayFor(d, nil)
}

// IsWorkingDayFor is IsWorkingDay with resource exceptions applied on top.
// A nil ex means no exceptions.
func (c *Calendar) IsWorkingDayFor(d time.Time, ex *Exceptions) bool {
	if !c.workingDays[d.Weekday()] {
		return false
	}
	if c.holidays[d.Format(isoLayout)] {
		return false
	}
	return !ex.Contains(d)
}

// NextWorkingDay returns the first working day strictly after d.
func (c *Calendar) NextWorkingDay(d time.Time) time.Time {
	return c.AddWorkingDays(d, 1)
}

// AddWorkingDays steps forward from start until n working days have been
// counted. start itself is never counted; n <= 0 returns start.
func (c *Calendar) AddWorkingDays(start time.Time, n int) time.Time {
	cur := Truncate(start)
	for counted := 0; counted < n; {
		cur = cur.AddDate(0, 0, 1)
		if c.IsWorkingDay(cur) {
			counted++
		}
	}
	return cur
}

// SubtractWorkingDays is AddWorkingDays stepping backward.
func (c *Calendar) SubtractWorkingDays(start time.Time, n int) time.Time {
	cur := Truncate(start)
	for counted := 0; counted < n; {
		cur = cur.AddDate(0, 0, -1)
		if c.IsWorkingDay(cur) {
			counted++
		}
	}
	return cur
}

// WorkingDays counts working days in [start, end] inclusive, or 0 if end
// precedes start.
func (c *Calendar) WorkingDays(start, end time.Time) int {
	return c.WorkingDaysFor(start, end, nil)
}

// WorkingDaysFor is WorkingDays with resource exceptions applied.
func (c *Calendar) WorkingDaysFor(start, end time.Time, ex *Exceptions) int {
	n := 0
	last := Truncate(end)
	for cur := Truncate(start); !cur.After(last); cur = cur.AddDate(0, 0, 1) {
		if c.IsWorkingDayFor(cur, ex) {
			n++
		}
	}
	return n
}

// WorkingHours returns WorkingDays(start, end) multiplied by hoursPerDay,
// or by the calendar default when hoursPerDay <= 0.
func (c *Calendar) WorkingHours(start, end time.Time, hoursPerDay float64) float64 {
	return c.WorkingHoursFor(start, end, hoursPerDay, nil)
}

// WorkingHoursFor is WorkingHours with resource exceptions applied.
func (c *Calendar) WorkingHoursFor(start, end time.Time, hoursPerDay float64, ex *Exceptions) float64 {
	if hoursPerDay <= 0 {
		hoursPerDay = c.hoursPerDay
	}
	return float64(c.WorkingDaysFor(start, end, ex)) * hoursPerDay
}

// WorkingDaysBetween returns the signed number of working days from from to
// to: working days in (from, to] when to is later, and the negated count of
// working days in [to, from) when it is earlier.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) int {
	from, to = Truncate(from), Truncate(to)
	switch {
	case to.After(from):
		return c.WorkingDays(from.AddDate(0, 0, 1), to)
	case to.Before(from):
		return -c.WorkingDays(to, from.AddDate(0, 0, -1))
	default:
		return 0
	}
}

// FinishFrom returns the last day of a span of days working days beginning
// at start. A working start counts as the first day.
func (c *Calendar) FinishFrom(start time.Time, days int) time.Time {
	if days <= 0 {
		return Truncate(start)
	}
	if c.IsWorkingDay(start) {
		days--
	}
	return c.AddWorkingDays(start, days)
}

// StartFrom returns the first day of a span of days working days ending at end.
func (c *Calendar) StartFrom(end time.Time, days int) time.Time {
	if days <= 0 {
		return Truncate(end)
	}
	if c.IsWorkingDay(end) {
		days--
	}
	return c.SubtractWorkingDays(end, days)
}

// Lag shifts from by a signed number of days according to the lag mode.
func (c *Calendar) Lag(from time.Time, days int) time.Time {
	if c.lagMode == LagCalendarDays {
		return Truncate(from).AddDate(0, 0, days)
	}
	switch {
	case days > 0:
		return c.AddWorkingDays(from, days)
	case days < 0:
		return c.SubtractWorkingDays(from, -days)
	default:
		return Truncate(from)
	}
}
