package schedule

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/papapumpkin/planiflow/internal/dag"
)

// Import replaces every task with tasks, keeping their ids. Input that the
// store would never produce is repaired and each repair is reported. Tasks
// with a non-positive or repeated id are skipped. A missing, milestone, or
// circular parent is dropped to the top level. Links to unknown tasks and
// links that would close a loop are removed. Resources and baselines are
// kept. Dates are taken as given; call Reschedule to resolve them.
func (s *Store) Import(tasks []Task) []error {
	var problems []error
	sorted := make([]Task, 0, len(tasks))
	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		switch {
		case t.ID <= 0:
			problems = append(problems, fmt.Errorf("%w: task %q has id %d", ErrTaskNotFound, t.Name, t.ID))
			continue
		case seen[t.ID]:
			problems = append(problems, fmt.Errorf("%w: %d", ErrDuplicateTask, t.ID))
			continue
		}
		seen[t.ID] = true
		sorted = append(sorted, t.clone())
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	s.tasks = make(map[int]*Task, len(sorted))
	s.children = make(map[int][]int)
	s.anchors = make(map[int]time.Time, len(sorted))
	s.nextID = 1
	for i := range sorted {
		t := &sorted[i]
		t.IsSummary = false
		t.CPM = CPMFields{}
		s.normalize(t)
		s.tasks[t.ID] = t
		s.nextID = max(s.nextID, t.ID+1)
	}

	problems = append(problems, s.importOutline()...)
	problems = append(problems, s.importLinks()...)

	for id, t := range s.tasks {
		s.anchors[id] = t.Start
	}
	s.regenerateWBS()
	s.logger.Debug("tasks imported", "tasks", len(s.tasks), "problems", len(problems))
	return problems
}

// importOutline attaches every task to its parent, dropping parents that
// are unknown, milestones, or part of an ancestry loop.
func (s *Store) importOutline() []error {
	var problems []error
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		p, ok := s.tasks[t.ParentID]
		switch {
		case t.ParentID == NoParent:
		case !ok || t.ParentID == id:
			problems = append(problems, fmt.Errorf("%w: task %d parent %d", ErrParentNotFound, id, t.ParentID))
			t.ParentID = NoParent
		case p.IsMilestone:
			problems = append(problems, fmt.Errorf("%w: task %d parent %d", ErrMilestoneParent, id, t.ParentID))
			t.ParentID = NoParent
		}
	}

	// Break ancestry loops: walk up from each task and cut the edge that
	// returns to a task already on the path.
	for _, id := range s.taskIDs() {
		path := map[int]bool{id: true}
		for cur := s.tasks[id]; cur.ParentID != NoParent; cur = s.tasks[cur.ParentID] {
			if path[cur.ParentID] {
				problems = append(problems, fmt.Errorf("%w: task %d parent %d forms a loop",
					ErrParentNotFound, cur.ID, cur.ParentID))
				cur.ParentID = NoParent
				break
			}
			path[cur.ParentID] = true
		}
	}

	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		s.children[t.ParentID] = append(s.children[t.ParentID], id)
	}
	for parent := range s.children {
		if p, ok := s.tasks[parent]; ok {
			p.IsSummary = true
			p.ScheduleType = Auto
		}
	}
	return problems
}

// importLinks loads dependency edges in id order, dropping any edge that
// would make the schedule circular together with the outline.
func (s *Store) importLinks() []error {
	var problems []error
	preds := dag.New()
	full := dag.New()
	for _, id := range s.taskIDs() {
		_ = preds.AddNode(id)
		_ = full.AddNode(id)
	}
	for _, id := range s.taskIDs() {
		if p := s.tasks[id].ParentID; p != NoParent {
			_ = full.Link(p, id)
		}
	}

	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		kept := t.Predecessors[:0]
		for _, dep := range t.Predecessors {
			if _, ok := s.tasks[dep.PredecessorID]; !ok {
				problems = append(problems, fmt.Errorf("%w: task %d predecessor %d", ErrTaskNotFound, id, dep.PredecessorID))
				continue
			}
			if err := full.AddEdge(id, dep.PredecessorID); err != nil {
				if errors.Is(err, dag.ErrCycle) {
					err = ErrCycle
				}
				problems = append(problems, fmt.Errorf("%w: dropped link %d → %d", err, dep.PredecessorID, id))
				continue
			}
			_ = preds.Link(id, dep.PredecessorID)
			kept = append(kept, dep)
		}
		t.Predecessors = slices.Clip(kept)
	}
	s.graph = preds
	return problems
}
