package schedule

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// randomStore builds a store through random AddTask and UpdateTask calls.
// Rejected calls must fail with a structural error and leave the store as
// it was.
func randomStore(rt *rapid.T) *Store {
	cal := calendar.New(calendar.WithLogger(quietLogger()))
	s := NewStore(cal, WithLogger(quietLogger()), WithClock(testClock))

	n := rapid.IntRange(1, 14).Draw(rt, "tasks")
	for i := 0; i < n; i++ {
		ids := s.taskIDs()
		task := Task{
			Name:        fmt.Sprintf("t%d", i),
			Start:       jan(1).AddDate(0, 0, rapid.IntRange(0, 20).Draw(rt, "offset")),
			IsMilestone: rapid.IntRange(0, 5).Draw(rt, "milestone") == 0,
		}
		task.End = task.Start.AddDate(0, 0, rapid.IntRange(0, 6).Draw(rt, "length"))
		if rapid.IntRange(0, 6).Draw(rt, "manual") == 0 {
			task.ScheduleType = Manual
		}
		parent := NoParent
		if len(ids) > 0 {
			for j, k := 0, rapid.IntRange(0, min(3, len(ids))).Draw(rt, "preds"); j < k; j++ {
				task.Predecessors = append(task.Predecessors, Dependency{
					PredecessorID: rapid.SampledFrom(ids).Draw(rt, "pred"),
					Type:          DependencyType(rapid.IntRange(0, 3).Draw(rt, "type")),
					LagDays:       rapid.IntRange(-2, 3).Draw(rt, "lag"),
				})
			}
			if rapid.Bool().Draw(rt, "nested") {
				parent = rapid.SampledFrom(ids).Draw(rt, "parent")
			}
		}

		before := s.Tasks()
		if _, err := s.AddTask(task, parent); err != nil {
			if !errors.Is(err, ErrCycle) && !errors.Is(err, ErrMilestoneParent) {
				rt.Fatalf("AddTask: unexpected error %v", err)
			}
			if diff := cmp.Diff(before, s.Tasks()); diff != "" {
				rt.Fatalf("rejected AddTask changed the store (-before +after):\n%s", diff)
			}
		}
	}

	for i, edits := 0, rapid.IntRange(0, 4).Draw(rt, "edits"); i < edits; i++ {
		ids := s.taskIDs()
		id := rapid.SampledFrom(ids).Draw(rt, "edit")
		upd := mustGetRapid(rt, s, id)
		upd.Predecessors = []Dependency{{
			PredecessorID: rapid.SampledFrom(ids).Draw(rt, "new_pred"),
			Type:          DependencyType(rapid.IntRange(0, 3).Draw(rt, "new_type")),
		}}
		before := s.Tasks()
		if err := s.UpdateTask(id, upd); err != nil {
			if !errors.Is(err, ErrCycle) {
				rt.Fatalf("UpdateTask: unexpected error %v", err)
			}
			if diff := cmp.Diff(before, s.Tasks()); diff != "" {
				rt.Fatalf("rejected UpdateTask changed the store (-before +after):\n%s", diff)
			}
		}
	}
	return s
}

func mustGetRapid(rt *rapid.T, s *Store, id int) Task {
	task, ok := s.GetTask(id)
	if !ok {
		rt.Fatalf("task %d not found", id)
	}
	return task
}

// The schedule graph, including summary-to-subtask edges, stays acyclic.
func TestProperty_ScheduleStaysAcyclic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := randomStore(rt)
		if _, err := s.scheduleGraph(nil).TopologicalSort(); err != nil {
			rt.Fatalf("schedule graph: %v", err)
		}
	})
}

// Milestones never span time and summaries always equal their children's span.
func TestProperty_MilestoneAndSummaryInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := randomStore(rt)
		for _, task := range s.Tasks() {
			if task.IsMilestone && !task.End.Equal(task.Start) {
				rt.Fatalf("milestone %d spans %v..%v", task.ID, task.Start, task.End)
			}
			if task.End.Before(task.Start) {
				rt.Fatalf("task %d ends before it starts", task.ID)
			}
			kids := s.GetChildTasks(task.ID)
			if task.IsSummary != (len(kids) > 0) {
				rt.Fatalf("task %d IsSummary = %v with %d children", task.ID, task.IsSummary, len(kids))
			}
			if len(kids) == 0 {
				continue
			}
			start, end := kids[0].Start, kids[0].End
			for _, k := range kids[1:] {
				start, _ = earlier(start, true, k.Start)
				end, _ = later(end, true, k.End)
			}
			if !task.Start.Equal(start) || !task.End.Equal(end) {
				rt.Fatalf("summary %d = %v..%v, children span %v..%v", task.ID, task.Start, task.End, start, end)
			}
		}
	})
}

// Rescheduling a consistent store moves nothing.
func TestProperty_RescheduleIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := randomStore(rt)
		before := s.Tasks()
		s.Reschedule()
		if diff := cmp.Diff(before, s.Tasks()); diff != "" {
			rt.Fatalf("Reschedule changed a propagated store (-before +after):\n%s", diff)
		}
	})
}

// The critical path always runs and never yields a negative-length task.
func TestProperty_CriticalPathRuns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := randomStore(rt)
		res, err := s.CriticalPath()
		if err != nil {
			rt.Fatalf("CriticalPath: %v", err)
		}
		for _, task := range s.Tasks() {
			if task.CPM.EarlyFinish.Before(task.CPM.EarlyStart) {
				rt.Fatalf("task %d early finish before early start", task.ID)
			}
			if !task.IsSummary && task.CPM.EarlyFinish.After(res.ProjectFinish) {
				rt.Fatalf("task %d finishes after the project", task.ID)
			}
		}
	})
}
