package schedule

import (
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// Status is a task's progress relative to a reference day.
type Status int

const (
	// Upcoming tasks have not started yet.
	Upcoming Status = iota
	// InProgress tasks span today.
	InProgress
	// Completed tasks are 100% done.
	Completed
	// Overdue tasks ended before today without finishing.
	Overdue
)

// String returns a lowercase label.
func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Overdue:
		return "overdue"
	default:
		return "upcoming"
	}
}

// StatusOf classifies t against today. Only the calendar day of today
// matters.
func StatusOf(t Task, today time.Time) Status {
	today = calendar.Truncate(today)
	switch {
	case t.PercentComplete >= 100:
		return Completed
	case t.End.Before(today):
		return Overdue
	case !t.Start.After(today) && today.Before(t.End):
		return InProgress
	default:
		return Upcoming
	}
}
