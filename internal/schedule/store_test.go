package schedule

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/planiflow/internal/dag"
)

func TestAddTaskAllocatesSequentialIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	for i, name := range []string{"design", "build", "ship"} {
		id := mustAdd(t, s, span(name, jan(1), jan(1)), NoParent)
		if id != i+1 {
			t.Errorf("AddTask(%q) = %d, want %d", name, id, i+1)
		}
	}
	if s.NextID() != 4 {
		t.Errorf("NextID() = %d, want 4", s.NextID())
	}
	if got := mustGet(t, s, 3).WBS; got != "3" {
		t.Errorf("WBS = %q, want %q", got, "3")
	}
}

func TestAddTaskParentErrors(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ms := mustAdd(t, s, Task{Name: "gate", Start: jan(5), IsMilestone: true}, NoParent)

	tests := []struct {
		name   string
		parent int
		want   error
	}{
		{name: "missing parent", parent: 99, want: ErrParentNotFound},
		{name: "milestone parent", parent: ms, want: ErrMilestoneParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTask(span("child", jan(1), jan(2)), tt.parent)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddTask error = %v, want %v", err, tt.want)
			}
		})
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestFinishToStartChainPropagates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(3), after(a)), NoParent)
	c := mustAdd(t, s, span("C", jan(1), jan(2), after(b)), NoParent)

	assertDates(t, s, b, jan(8), jan(10))
	assertDates(t, s, c, jan(11), jan(12))

	if err := s.UpdateTask(a, span("A", jan(1), jan(9))); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	assertDates(t, s, a, jan(1), jan(9))
	assertDates(t, s, b, jan(10), jan(12))
	assertDates(t, s, c, jan(15), jan(16))
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		if err := s.UpdateTask(7, Task{}); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("UpdateTask error = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("summary cannot become milestone", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
		mustAdd(t, s, span("work", jan(1), jan(2)), p)
		err := s.UpdateTask(p, Task{Name: "phase", Start: jan(1), IsMilestone: true})
		if !errors.Is(err, ErrMilestoneParent) {
			t.Errorf("UpdateTask error = %v, want ErrMilestoneParent", err)
		}
	})

	t.Run("summary is forced to auto", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
		mustAdd(t, s, span("work", jan(1), jan(2)), p)
		if err := s.UpdateTask(p, Task{Name: "phase", ScheduleType: Manual}); err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}
		got := mustGet(t, s, p)
		if got.ScheduleType != Auto || !got.IsSummary {
			t.Errorf("summary = %v/%v, want Auto/true", got.ScheduleType, got.IsSummary)
		}
		assertDates(t, s, p, jan(1), jan(2))
	})

	t.Run("clamps and collapses", func(t *testing.T) {
		t.Parallel()
		s := newTestStore(t)
		id := mustAdd(t, s, span("work", jan(1), jan(2)), NoParent)
		upd := Task{Name: "gate", Start: jan(3), End: jan(9), IsMilestone: true, PercentComplete: 150}
		if err := s.UpdateTask(id, upd); err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}
		got := mustGet(t, s, id)
		if got.PercentComplete != 100 {
			t.Errorf("PercentComplete = %d, want 100", got.PercentComplete)
		}
		assertDates(t, s, id, jan(3), jan(3))
	})
}

func TestCycleRejectionLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(2)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(2), after(a)), NoParent)
	c := mustAdd(t, s, span("C", jan(1), jan(2), after(b)), NoParent)
	before := s.Tasks()

	err := s.UpdateTask(a, span("A", jan(1), jan(2), after(c)))
	if !errors.Is(err, ErrCycle) || !errors.Is(err, dag.ErrCycle) {
		t.Fatalf("UpdateTask error = %v, want ErrCycle wrapping dag.ErrCycle", err)
	}
	if diff := cmp.Diff(before, s.Tasks()); diff != "" {
		t.Errorf("tasks changed after rejected update (-before +after):\n%s", diff)
	}
	if got := taskIDsOf(s.GetSuccessors(a)); !cmp.Equal(got, []int{b}) {
		t.Errorf("GetSuccessors(%d) = %v, want [%d]", a, got, b)
	}
}

func TestDependencyOnAncestorIsCycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	c := mustAdd(t, s, span("work", jan(1), jan(2)), p)

	if err := s.UpdateTask(c, span("work", jan(1), jan(2), after(p))); !errors.Is(err, ErrCycle) {
		t.Errorf("UpdateTask error = %v, want ErrCycle", err)
	}
	if _, err := s.AddTask(span("more", jan(1), jan(2), after(p)), p); !errors.Is(err, ErrCycle) {
		t.Errorf("AddTask error = %v, want ErrCycle", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestWouldCreateCycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(1)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(1), after(a)), NoParent)
	c := mustAdd(t, s, span("C", jan(1), jan(1), after(b)), NoParent)

	tests := []struct {
		task, pred int
		want       bool
	}{
		{task: a, pred: c, want: true},
		{task: a, pred: b, want: true},
		{task: c, pred: a, want: false},
		{task: b, pred: b, want: false},
	}
	for _, tt := range tests {
		if got := s.WouldCreateCycle(tt.task, tt.pred); got != tt.want {
			t.Errorf("WouldCreateCycle(%d, %d) = %v, want %v", tt.task, tt.pred, got, tt.want)
		}
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	c1 := mustAdd(t, s, span("dig", jan(1), jan(5)), p)
	mustAdd(t, s, span("pour", jan(1), jan(2)), p)
	dep := mustAdd(t, s, span("frame", jan(1), jan(2), after(c1)), NoParent)
	other := mustAdd(t, s, span("permit", jan(3), jan(3)), NoParent)
	assertDates(t, s, dep, jan(8), jan(9))

	if err := s.DeleteTask(p); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got := taskIDsOf(s.Tasks()); !cmp.Equal(got, []int{dep, other}) {
		t.Errorf("remaining = %v, want [%d %d]", got, dep, other)
	}
	got := mustGet(t, s, dep)
	if len(got.Predecessors) != 0 {
		t.Errorf("predecessors = %v, want none", got.Predecessors)
	}
	assertDates(t, s, dep, jan(1), jan(2))
	if got.WBS != "1" {
		t.Errorf("WBS = %q, want %q", got.WBS, "1")
	}

	if err := s.DeleteTask(p); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second DeleteTask error = %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteLastChildDemotesParent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	c := mustAdd(t, s, span("work", jan(8), jan(9)), p)
	assertDates(t, s, p, jan(8), jan(9))

	if err := s.DeleteTask(c); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	got := mustGet(t, s, p)
	if got.IsSummary {
		t.Error("parent is still a summary")
	}
	assertDates(t, s, p, jan(8), jan(9))
}

func TestOutlineAccessors(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := mustAdd(t, s, span("root", jan(1), jan(1)), NoParent)
	a := mustAdd(t, s, span("a", jan(1), jan(1)), root)
	b := mustAdd(t, s, span("b", jan(1), jan(1)), root)
	leaf := mustAdd(t, s, span("leaf", jan(1), jan(1)), a)

	if got := taskIDsOf(s.GetAllDescendants(root)); !cmp.Equal(got, []int{a, leaf, b}) {
		t.Errorf("GetAllDescendants = %v, want [%d %d %d]", got, a, leaf, b)
	}
	if got := taskIDsOf(s.GetChildTasks(root)); !cmp.Equal(got, []int{a, b}) {
		t.Errorf("GetChildTasks = %v, want [%d %d]", got, a, b)
	}
	if got := taskIDsOf(s.GetTopLevelTasks()); !cmp.Equal(got, []int{root}) {
		t.Errorf("GetTopLevelTasks = %v, want [%d]", got, root)
	}
	if got := s.Level(leaf); got != 2 {
		t.Errorf("Level(leaf) = %d, want 2", got)
	}
	if got := s.Level(99); got != -1 {
		t.Errorf("Level(99) = %d, want -1", got)
	}

	wbs := map[int]string{root: "1", a: "1.1", b: "1.2", leaf: "1.1.1"}
	for id, want := range wbs {
		if got := mustGet(t, s, id).WBS; got != want {
			t.Errorf("WBS(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestMoveTask(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("a", jan(1), jan(2)), NoParent)
	b := mustAdd(t, s, span("b", jan(1), jan(1)), a)
	c := mustAdd(t, s, span("c", jan(8), jan(9)), NoParent)
	gate := mustAdd(t, s, Task{Name: "gate", Start: jan(3), IsMilestone: true}, NoParent)

	tests := []struct {
		name   string
		id     int
		parent int
		want   error
	}{
		{name: "under itself", id: a, parent: a, want: ErrInvalidMove},
		{name: "under descendant", id: a, parent: b, want: ErrInvalidMove},
		{name: "under milestone", id: c, parent: gate, want: ErrMilestoneParent},
		{name: "missing task", id: 42, parent: NoParent, want: ErrTaskNotFound},
		{name: "missing parent", id: c, parent: 42, want: ErrParentNotFound},
	}
	for _, tt := range tests {
		if err := s.MoveTask(tt.id, tt.parent); !errors.Is(err, tt.want) {
			t.Errorf("%s: MoveTask error = %v, want %v", tt.name, err, tt.want)
		}
	}

	if err := s.MoveTask(c, a); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	assertDates(t, s, a, jan(1), jan(9))
	if got := mustGet(t, s, c).WBS; got != "1.2" {
		t.Errorf("WBS = %q, want %q", got, "1.2")
	}

	if err := s.MoveTask(b, NoParent); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	if err := s.MoveTask(c, NoParent); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	if mustGet(t, s, a).IsSummary {
		t.Error("empty parent is still a summary")
	}
}

func TestInsertBeforeRenumbers(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(1), after(a)), NoParent)
	mustAdd(t, s, span("C", jan(1), jan(1), after(b)), NoParent)

	// The new task depends on B, named by its id before the shift.
	id, err := s.InsertBefore(span("new", jan(1), jan(1), after(b)), b)
	if err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	if id != 2 {
		t.Fatalf("InsertBefore id = %d, want 2", id)
	}

	var names []string
	for _, task := range s.Tasks() {
		names = append(names, task.Name)
	}
	if diff := cmp.Diff([]string{"A", "new", "B", "C"}, names); diff != "" {
		t.Errorf("names by id (-want +got):\n%s", diff)
	}
	if got := mustGet(t, s, 4).Predecessors; !cmp.Equal(got, []Dependency{after(3)}) {
		t.Errorf("C predecessors = %v, want [after 3]", got)
	}
	if got := mustGet(t, s, 2).Predecessors; !cmp.Equal(got, []Dependency{after(3)}) {
		t.Errorf("new predecessors = %v, want [after 3]", got)
	}
	assertDates(t, s, 3, jan(8), jan(8))
	assertDates(t, s, 2, jan(9), jan(9))
	if s.NextID() != 5 {
		t.Errorf("NextID() = %d, want 5", s.NextID())
	}
}

func TestInsertAfterKeepsParent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	c := mustAdd(t, s, span("work", jan(1), jan(2)), p)
	mustAdd(t, s, span("later", jan(1), jan(1)), NoParent)

	id, err := s.InsertAfter(span("extra", jan(3), jan(4)), c)
	if err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	got := mustGet(t, s, id)
	if id != 3 || got.ParentID != p || got.WBS != "1.2" {
		t.Errorf("inserted = id %d parent %d wbs %q, want id 3 parent %d wbs 1.2", id, got.ParentID, got.WBS, p)
	}
	if mustGet(t, s, 4).Name != "later" {
		t.Errorf("task 4 = %q, want %q", mustGet(t, s, 4).Name, "later")
	}
	assertDates(t, s, p, jan(1), jan(4))
}

func TestInsertRollsBackOnRejection(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	c := mustAdd(t, s, span("work", jan(1), jan(2)), p)
	mustAdd(t, s, span("after", jan(1), jan(1), after(c)), NoParent)
	if _, err := s.CreateBaseline("plan"); err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}
	before := s.Tasks()
	nextID := s.NextID()

	// A sibling of c that depends on c's parent closes a loop through the outline.
	if _, err := s.InsertBefore(span("bad", jan(1), jan(1), after(p)), c); !errors.Is(err, ErrCycle) {
		t.Fatalf("InsertBefore error = %v, want ErrCycle", err)
	}
	if diff := cmp.Diff(before, s.Tasks()); diff != "" {
		t.Errorf("tasks changed after rollback (-before +after):\n%s", diff)
	}
	if s.NextID() != nextID {
		t.Errorf("NextID() = %d, want %d", s.NextID(), nextID)
	}
	if got := taskIDsOf(s.GetSuccessors(c)); !cmp.Equal(got, []int{3}) {
		t.Errorf("GetSuccessors(%d) = %v, want [3]", c, got)
	}
	b, _ := s.Baseline("plan")
	if snap, ok := b.Snapshot(c); !ok || snap.Name != "work" {
		t.Errorf("Snapshot(%d) = %+v, %v, want task work", c, snap, ok)
	}

	if _, err := s.InsertAfter(Task{}, 77); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("InsertAfter error = %v, want ErrTaskNotFound", err)
	}
}

func TestInsertShiftsBaselineSnapshots(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	mustAdd(t, s, span("A", jan(1), jan(1)), NoParent)
	if _, err := s.CreateBaseline("plan"); err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}
	if _, err := s.InsertBefore(span("first", jan(1), jan(1)), 1); err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	b, _ := s.Baseline("plan")
	snap, ok := b.Snapshot(2)
	if !ok || snap.Name != "A" {
		t.Errorf("Snapshot(2) = %+v, %v, want task A", snap, ok)
	}
}

func TestIndentOutdent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("a", jan(1), jan(1)), NoParent)
	b := mustAdd(t, s, span("b", jan(2), jan(2)), NoParent)
	c := mustAdd(t, s, span("c", jan(3), jan(3)), NoParent)

	moved, err := s.IndentTasks([]int{c, b})
	if err != nil {
		t.Fatalf("IndentTasks: %v", err)
	}
	if diff := cmp.Diff(map[int]int{b: a, c: a}, moved); diff != "" {
		t.Errorf("IndentTasks moves (-want +got):\n%s", diff)
	}
	if got := mustGet(t, s, c).WBS; got != "1.2" {
		t.Errorf("WBS(c) = %q, want %q", got, "1.2")
	}
	assertDates(t, s, a, jan(2), jan(3))

	if _, err := s.IndentTasks([]int{a}); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("IndentTasks(first) error = %v, want ErrInvalidMove", err)
	}

	moved, err = s.OutdentTasks([]int{c})
	if err != nil {
		t.Fatalf("OutdentTasks: %v", err)
	}
	if diff := cmp.Diff(map[int]int{c: NoParent}, moved); diff != "" {
		t.Errorf("OutdentTasks moves (-want +got):\n%s", diff)
	}
	if _, err := s.OutdentTasks([]int{a}); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("OutdentTasks(top level) error = %v, want ErrInvalidMove", err)
	}
}

func TestTracksAndWaves(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("a", jan(1), jan(1)), NoParent)
	b := mustAdd(t, s, span("b", jan(1), jan(1), after(a)), NoParent)
	c := mustAdd(t, s, span("c", jan(1), jan(1)), NoParent)

	tracks, err := s.Tracks()
	if err != nil {
		t.Fatalf("Tracks: %v", err)
	}
	want := []dag.Track{{ID: 0, NodeIDs: []int{a, b}}, {ID: 1, NodeIDs: []int{c}}}
	if diff := cmp.Diff(want, tracks); diff != "" {
		t.Errorf("Tracks (-want +got):\n%s", diff)
	}

	waves, err := s.Waves()
	if err != nil {
		t.Fatalf("Waves: %v", err)
	}
	wantWaves := []dag.Wave{{Number: 1, NodeIDs: []int{a, c}}, {Number: 2, NodeIDs: []int{b}}}
	if diff := cmp.Diff(wantWaves, waves); diff != "" {
		t.Errorf("Waves (-want +got):\n%s", diff)
	}
}
