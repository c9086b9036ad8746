// Package schedule is the scheduling engine. A Store owns tasks, resources,
// and baselines. Every mutation is validated before any state changes, then
// the dependency resolver, change propagation, and summary rollup run
// synchronously before the call returns. The critical path is computed on
// demand.
//
// A Store is not safe for concurrent use.
package schedule

import (
	"slices"
	"strings"
	"time"
)

// NoParent is the ParentID of a top-level task. Task ids start at 1.
const NoParent = 0

// DependencyType is the kind of precedence constraint between two tasks.
type DependencyType int

const (
	// FinishToStart: the successor starts after the predecessor finishes.
	FinishToStart DependencyType = iota
	// StartToStart: the successor starts when the predecessor starts.
	StartToStart
	// FinishToFinish: the successor finishes when the predecessor finishes.
	FinishToFinish
	// StartToFinish: the successor finishes when the predecessor starts.
	StartToFinish
)

// String returns the two-letter abbreviation.
func (d DependencyType) String() string {
	switch d {
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "FS"
	}
}

// ParseDependencyType parses FS, SS, FF, or SF case-insensitively.
func ParseDependencyType(s string) (DependencyType, bool) {
	for d := FinishToStart; d <= StartToFinish; d++ {
		if strings.EqualFold(strings.TrimSpace(s), d.String()) {
			return d, true
		}
	}
	return FinishToStart, false
}

// ScheduleType controls whether the engine recomputes a task's dates.
type ScheduleType int

const (
	// Auto tasks are placed by the resolver.
	Auto ScheduleType = iota
	// Manual tasks only move on direct edits.
	Manual
)

// String returns "Auto" or "Manual".
func (s ScheduleType) String() string {
	if s == Manual {
		return "Manual"
	}
	return "Auto"
}

// Dependency is one predecessor edge. LagDays is signed; negative values are
// leads.
type Dependency struct {
	PredecessorID int
	Type          DependencyType
	LagDays       int
}

// Assignment allocates a share of a resource to a task. Allocation is a
// percentage and may exceed 100.
type Assignment struct {
	Name       string
	Allocation float64
}

// Resource is a named, billable worker with its own non-working days.
type Resource struct {
	Name           string
	MaxHoursPerDay float64
	BillingRate    float64
	// Exceptions holds "YYYY-MM-DD" entries or "YYYY-MM-DD to YYYY-MM-DD"
	// inclusive ranges.
	Exceptions []string
}

// CPMFields are derived by CriticalPath and overwritten on every run.
type CPMFields struct {
	EarlyStart  time.Time
	EarlyFinish time.Time
	LateStart   time.Time
	LateFinish  time.Time
	// Slack is the signed working-day distance from EarlyStart to LateStart.
	Slack    int
	Critical bool
}

// Task is a schedulable unit of work.
type Task struct {
	ID              int
	Name            string
	Notes           string
	Start           time.Time
	End             time.Time
	PercentComplete int
	Predecessors    []Dependency
	Resources       []Assignment
	ParentID        int

	// IsSummary is maintained by the store: true iff the task has children.
	IsSummary    bool
	IsMilestone  bool
	ScheduleType ScheduleType
	WBS          string
	CPM          CPMFields
}

// clone returns a copy of t that shares no slices with it.
func (t Task) clone() Task {
	t.Predecessors = slices.Clone(t.Predecessors)
	t.Resources = slices.Clone(t.Resources)
	return t
}

func (r Resource) clone() Resource {
	r.Exceptions = slices.Clone(r.Exceptions)
	return r
}

// predecessorIDs returns the distinct predecessor ids of t, in list order.
func (t *Task) predecessorIDs() []int {
	ids := make([]int, 0, len(t.Predecessors))
	for _, dep := range t.Predecessors {
		if !slices.Contains(ids, dep.PredecessorID) {
			ids = append(ids, dep.PredecessorID)
		}
	}
	return ids
}
