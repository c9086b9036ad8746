package project

import (
	"errors"
	"fmt"
	"slices"

	"github.com/papapumpkin/planiflow/internal/dag"
	"github.com/papapumpkin/planiflow/internal/schedule"
)

const (
	// MaxTasks bounds the number of tasks in one project file.
	MaxTasks = 10000
	// MaxTextLen bounds project, task, and resource names and task notes.
	MaxTextLen = 250
)

// ErrTooManyTasks is returned for a project with more than MaxTasks tasks.
var ErrTooManyTasks = errors.New("too many tasks")

// ErrTextTooLong is returned for a name or note longer than MaxTextLen.
var ErrTextTooLong = errors.New("text too long")

// ErrDateOrder is returned for a task that starts after it ends.
var ErrDateOrder = errors.New("start date after end date")

// ErrNextTaskID is returned when next_task_id would reuse an existing id.
var ErrNextTaskID = errors.New("next_task_id not above highest task id")

// Validate checks p for semantic problems and returns all of them. Problems
// wrap the schedule sentinels where one applies, so callers can match them
// with errors.Is. Too many tasks stops validation early.
func Validate(p Project) []error {
	var problems []error
	add := func(err error) { problems = append(problems, err) }

	if len(p.Name) > MaxTextLen {
		add(fmt.Errorf("project name: %w", ErrTextTooLong))
	}
	if len(p.Tasks) > MaxTasks {
		add(fmt.Errorf("%w: %d, limit %d", ErrTooManyTasks, len(p.Tasks), MaxTasks))
		return problems
	}

	ids := make(map[int]bool, len(p.Tasks))
	maxID := 0
	for _, t := range p.Tasks {
		if ids[t.ID] {
			add(fmt.Errorf("task %d: %w", t.ID, schedule.ErrDuplicateTask))
		}
		ids[t.ID] = true
		maxID = max(maxID, t.ID)
	}

	resources := make(map[string]bool, len(p.Resources))
	for _, r := range p.Resources {
		if len(r.Name) > MaxTextLen {
			add(fmt.Errorf("resource %q: name: %w", r.Name, ErrTextTooLong))
		}
		resources[r.Name] = true
	}

	for _, t := range p.Tasks {
		problems = append(problems, validateTask(t, ids, resources)...)
	}

	if hasCycle(p.Tasks, ids) {
		add(fmt.Errorf("project: %w", schedule.ErrCycle))
	}

	if p.NextTaskID != 0 && len(ids) > 0 && p.NextTaskID <= maxID {
		add(fmt.Errorf("%w: %d <= %d", ErrNextTaskID, p.NextTaskID, maxID))
	}
	return problems
}

func validateTask(t TaskRecord, ids map[int]bool, resources map[string]bool) []error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("task %d (%q): "+format, append([]any{t.ID, t.Name}, args...)...))
	}

	if t.ParentID != nil && *t.ParentID != schedule.NoParent && !ids[*t.ParentID] {
		add("parent %d: %w", *t.ParentID, schedule.ErrParentNotFound)
	}
	for _, v := range t.Predecessors {
		dep, err := normalizePredecessor(v)
		if err != nil {
			add("%w", err)
			continue
		}
		if !ids[dep.PredecessorID] {
			add("predecessor %d: %w", dep.PredecessorID, schedule.ErrTaskNotFound)
		}
	}
	if len(t.Name) > MaxTextLen {
		add("name: %w", ErrTextTooLong)
	}
	if len(t.Notes) > MaxTextLen {
		add("notes: %w", ErrTextTooLong)
	}

	start, errStart := ParseDate(t.StartDate)
	end, errEnd := ParseDate(t.EndDate)
	switch {
	case errStart != nil:
		add("start date: %w", errStart)
	case errEnd != nil && !t.IsMilestone:
		add("end date: %w", errEnd)
	case errEnd == nil && start.After(end):
		add("%w", ErrDateOrder)
	}

	for _, v := range t.AssignedResources {
		a, err := normalizeAssignment(v)
		if err != nil {
			add("%w", err)
			continue
		}
		if !resources[a.Name] {
			add("resource %q: %w", a.Name, schedule.ErrResourceNotFound)
		}
	}
	return problems
}

// hasCycle reports whether predecessor edges between known tasks loop.
func hasCycle(tasks []TaskRecord, ids map[int]bool) bool {
	g := dag.New()
	nodes := make([]int, 0, len(ids))
	for id := range ids {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)
	for _, id := range nodes {
		_ = g.AddNode(id)
	}
	for _, t := range tasks {
		for _, pred := range predecessorIDs(t) {
			if pred == t.ID {
				continue
			}
			if ids[pred] {
				_ = g.Link(t.ID, pred)
			}
		}
	}
	_, err := g.TopologicalSort()
	return errors.Is(err, dag.ErrCycle)
}
