package schedule

import (
	"fmt"
	"time"
)

// CPMResult summarizes one critical path run. Per-task fields are written
// to each task's CPM.
type CPMResult struct {
	ProjectStart  time.Time
	ProjectFinish time.Time
	// Critical lists critical non-summary tasks in evaluation order.
	Critical []int
}

// lateBound collects the backward-pass limits on a task: a latest finish
// and, from SS and SF successors, an optional latest start.
type lateBound struct {
	finish   time.Time
	start    time.Time
	hasStart bool
}

// CriticalPath runs a forward and a backward pass over the schedule and
// fills every task's CPM fields. Summaries are not scheduled themselves;
// their fields aggregate their children and their successors constrain
// every subtask. Dependencies whose successor is a summary are ignored,
// matching the resolver. Manual tasks are pinned at their own start.
func (s *Store) CriticalPath() (CPMResult, error) {
	for _, t := range s.tasks {
		t.CPM = CPMFields{}
	}
	if len(s.tasks) == 0 {
		return CPMResult{}, nil
	}
	order, err := s.scheduleGraph(nil).TopologicalSort()
	if err != nil {
		return CPMResult{}, fmt.Errorf("critical path: %w", err)
	}

	var res CPMResult
	var hasFinish, hasStart bool
	for _, id := range order {
		t := s.tasks[id]
		if t.IsSummary {
			s.aggregateCPM(t, false)
			continue
		}
		dur := s.duration(t)
		t.CPM.EarlyStart, _ = s.earlyStart(t, dur, s.cpmDates)
		t.CPM.EarlyFinish = s.finishFrom(t, t.CPM.EarlyStart, dur)
		res.ProjectStart, hasStart = earlier(res.ProjectStart, hasStart, t.CPM.EarlyStart)
		res.ProjectFinish, hasFinish = later(res.ProjectFinish, hasFinish, t.CPM.EarlyFinish)
	}

	bounds := make(map[int]lateBound)
	for i := len(order) - 1; i >= 0; i-- {
		t := s.tasks[order[i]]
		b := s.lateBoundOf(t, res.ProjectFinish, bounds)
		if t.IsSummary {
			bounds[t.ID] = b
			continue
		}
		dur := s.duration(t)
		lf := b.finish
		if b.hasStart {
			lf, _ = earlier(lf, true, s.finishFrom(t, b.start, dur))
		}
		t.CPM.LateFinish = lf
		t.CPM.LateStart = lf
		if !t.IsMilestone {
			t.CPM.LateStart = s.cal.StartFrom(lf, dur)
		}
		t.CPM.Slack = s.cal.WorkingDaysBetween(t.CPM.EarlyStart, t.CPM.LateStart)
		t.CPM.Critical = t.CPM.Slack <= 0
	}

	for _, id := range order {
		t := s.tasks[id]
		if t.IsSummary {
			s.aggregateCPM(t, true)
			continue
		}
		if t.CPM.Critical {
			res.Critical = append(res.Critical, id)
		}
	}
	s.logger.Debug("critical path computed", "tasks", len(order), "critical", len(res.Critical),
		"finish", res.ProjectFinish)
	return res, nil
}

// earlyDates looks up a scheduled task's early start and finish.
type earlyDates func(id int) (start, finish time.Time, ok bool)

// cpmDates reads the early dates of the current critical path run.
func (s *Store) cpmDates(id int) (time.Time, time.Time, bool) {
	p, ok := s.tasks[id]
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return p.CPM.EarlyStart, p.CPM.EarlyFinish, true
}

// earlyStart applies the resolver's constraint rules to predecessors'
// early dates. End constraints bound the start through the task's duration.
// It also returns the predecessor whose constraint won, or NoParent when
// the task is unconstrained.
func (s *Store) earlyStart(t *Task, dur int, early earlyDates) (time.Time, int) {
	if t.ScheduleType == Manual {
		return t.Start, NoParent
	}
	var es time.Time
	driver := NoParent
	fromEnd := func(end time.Time) time.Time {
		if t.IsMilestone {
			return end
		}
		return s.cal.StartFrom(end, dur)
	}
	for _, dep := range t.Predecessors {
		ps, pf, ok := early(dep.PredecessorID)
		if !ok {
			continue
		}
		var c time.Time
		switch dep.Type {
		case FinishToStart:
			c = s.finishToStart(pf, dep.LagDays)
		case StartToStart:
			c = s.cal.Lag(ps, dep.LagDays)
		case FinishToFinish:
			c = fromEnd(s.cal.Lag(pf, dep.LagDays))
		case StartToFinish:
			c = fromEnd(s.cal.Lag(ps, dep.LagDays))
		default:
			continue
		}
		if driver == NoParent || c.After(es) {
			es, driver = c, dep.PredecessorID
		}
	}
	if driver == NoParent {
		return t.Start, NoParent
	}
	return es, driver
}

// lateBoundOf combines the project finish, the parent's bound, and every
// non-summary successor's back-constraint on t.
func (s *Store) lateBoundOf(t *Task, finish time.Time, bounds map[int]lateBound) lateBound {
	b := lateBound{finish: finish}
	if pb, ok := bounds[t.ParentID]; ok && t.ParentID != NoParent {
		b.finish, _ = earlier(b.finish, true, pb.finish)
		if pb.hasStart {
			b.start, b.hasStart = earlier(b.start, b.hasStart, pb.start)
		}
	}
	for _, succID := range s.graph.Dependents(t.ID) {
		x, ok := s.tasks[succID]
		if !ok || x.IsSummary {
			continue
		}
		for _, dep := range x.Predecessors {
			if dep.PredecessorID != t.ID {
				continue
			}
			switch dep.Type {
			case FinishToStart:
				b.finish, _ = earlier(b.finish, true, s.startBeforeFinish(x.CPM.LateStart, dep.LagDays))
			case StartToStart:
				b.start, b.hasStart = earlier(b.start, b.hasStart, s.cal.Lag(x.CPM.LateStart, -dep.LagDays))
			case FinishToFinish:
				b.finish, _ = earlier(b.finish, true, s.cal.Lag(x.CPM.LateFinish, -dep.LagDays))
			case StartToFinish:
				b.start, b.hasStart = earlier(b.start, b.hasStart, s.cal.Lag(x.CPM.LateFinish, -dep.LagDays))
			}
		}
	}
	return b
}

// aggregateCPM folds a summary's children into its CPM fields. The early
// pass sets only the early dates.
func (s *Store) aggregateCPM(t *Task, late bool) {
	kids := s.children[t.ID]
	if len(kids) == 0 {
		return
	}
	first := s.tasks[kids[0]].CPM
	agg := t.CPM
	if !late {
		agg.EarlyStart, agg.EarlyFinish = first.EarlyStart, first.EarlyFinish
	} else {
		agg.LateStart, agg.LateFinish = first.LateStart, first.LateFinish
		agg.Slack, agg.Critical = first.Slack, false
	}
	for _, id := range kids {
		c := s.tasks[id].CPM
		if !late {
			agg.EarlyStart, _ = earlier(agg.EarlyStart, true, c.EarlyStart)
			agg.EarlyFinish, _ = later(agg.EarlyFinish, true, c.EarlyFinish)
			continue
		}
		agg.LateStart, _ = earlier(agg.LateStart, true, c.LateStart)
		agg.LateFinish, _ = later(agg.LateFinish, true, c.LateFinish)
		agg.Slack = min(agg.Slack, c.Slack)
		agg.Critical = agg.Critical || c.Critical
	}
	t.CPM = agg
}
