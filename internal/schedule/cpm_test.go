package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type cpmWant struct {
	es, ef, ls, lf time.Time
	slack          int
	critical       bool
}

func assertCPM(t *testing.T, s *Store, id int, want cpmWant) {
	t.Helper()
	got := mustGet(t, s, id).CPM
	wantFields := CPMFields{
		EarlyStart: want.es, EarlyFinish: want.ef,
		LateStart: want.ls, LateFinish: want.lf,
		Slack: want.slack, Critical: want.critical,
	}
	if diff := cmp.Diff(wantFields, got); diff != "" {
		t.Errorf("task %d CPM (-want +got):\n%s", id, diff)
	}
}

func TestCriticalPathChain(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(3), after(a)), NoParent)
	c := mustAdd(t, s, span("C", jan(1), jan(2), after(b)), NoParent)
	d := mustAdd(t, s, span("D", jan(1), jan(1)), NoParent)

	res, err := s.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if !res.ProjectFinish.Equal(jan(12)) || !res.ProjectStart.Equal(jan(1)) {
		t.Errorf("project span = %v..%v, want Jan 1..Jan 12", res.ProjectStart, res.ProjectFinish)
	}
	if diff := cmp.Diff([]int{a, b, c}, res.Critical); diff != "" {
		t.Errorf("Critical (-want +got):\n%s", diff)
	}

	assertCPM(t, s, a, cpmWant{es: jan(1), ef: jan(5), ls: jan(1), lf: jan(5), critical: true})
	assertCPM(t, s, b, cpmWant{es: jan(8), ef: jan(10), ls: jan(8), lf: jan(10), critical: true})
	assertCPM(t, s, c, cpmWant{es: jan(11), ef: jan(12), ls: jan(11), lf: jan(12), critical: true})
	assertCPM(t, s, d, cpmWant{es: jan(1), ef: jan(1), ls: jan(12), lf: jan(12), slack: 9})
}

func TestCriticalPathSummaryAggregates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	long := mustAdd(t, s, span("long", jan(1), jan(5)), p)
	short := mustAdd(t, s, span("short", jan(1), jan(2)), p)
	next := mustAdd(t, s, span("next", jan(1), jan(2), after(long)), NoParent)

	res, err := s.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if diff := cmp.Diff([]int{long, next}, res.Critical); diff != "" {
		t.Errorf("Critical (-want +got):\n%s", diff)
	}
	assertCPM(t, s, short, cpmWant{es: jan(1), ef: jan(2), ls: jan(8), lf: jan(9), slack: 5})
	assertCPM(t, s, p, cpmWant{es: jan(1), ef: jan(5), ls: jan(1), lf: jan(9), critical: true})
}

func TestCriticalPathSummarySuccessorBindsSubtasks(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	quick := mustAdd(t, s, span("quick", jan(1), jan(2)), p)
	slow := mustAdd(t, s, span("slow", jan(1), jan(5)), p)
	next := mustAdd(t, s, span("next", jan(1), jan(1), after(p)), NoParent)

	res, err := s.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if diff := cmp.Diff([]int{slow, next}, res.Critical); diff != "" {
		t.Errorf("Critical (-want +got):\n%s", diff)
	}
	assertCPM(t, s, quick, cpmWant{es: jan(1), ef: jan(2), ls: jan(4), lf: jan(5), slack: 3})
	assertCPM(t, s, next, cpmWant{es: jan(8), ef: jan(8), ls: jan(8), lf: jan(8), critical: true})
}

func TestCriticalPathManualAndMilestone(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("a", jan(1), jan(5)), NoParent)
	pinned := mustAdd(t, s, Task{
		Name: "pinned", Start: jan(10), End: jan(11),
		ScheduleType: Manual, Predecessors: []Dependency{after(a)},
	}, NoParent)
	gate := mustAdd(t, s, Task{Name: "gate", Start: jan(1), IsMilestone: true, Predecessors: []Dependency{after(pinned)}}, NoParent)

	if _, err := s.CriticalPath(); err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	got := mustGet(t, s, pinned).CPM
	if !got.EarlyStart.Equal(jan(10)) || !got.EarlyFinish.Equal(jan(11)) {
		t.Errorf("pinned early = %v..%v, want Jan 10..Jan 11", got.EarlyStart, got.EarlyFinish)
	}
	assertCPM(t, s, gate, cpmWant{es: jan(12), ef: jan(12), ls: jan(12), lf: jan(12), critical: true})
	// a may finish as late as the day before pinned starts.
	assertCPM(t, s, a, cpmWant{es: jan(1), ef: jan(5), ls: jan(3), lf: jan(9), slack: 2})
}

func TestCriticalPathStartConstraints(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("a", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("b", jan(1), jan(2), Dependency{PredecessorID: a, Type: StartToStart, LagDays: 1}), NoParent)

	if _, err := s.CriticalPath(); err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	assertCPM(t, s, b, cpmWant{es: jan(2), ef: jan(3), ls: jan(4), lf: jan(5), slack: 2})
	// b's latest start of Jan 4 lets a start no later than Jan 3, but a's
	// own length pins it to the project finish.
	assertCPM(t, s, a, cpmWant{es: jan(1), ef: jan(5), ls: jan(1), lf: jan(5), critical: true})
}

func TestCriticalPathEmptyAndReset(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	res, err := s.CriticalPath()
	if err != nil || len(res.Critical) != 0 {
		t.Fatalf("CriticalPath on empty store = %+v, %v", res, err)
	}

	a := mustAdd(t, s, span("a", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("b", jan(1), jan(2), after(a)), NoParent)
	if _, err := s.CriticalPath(); err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if err := s.DeleteTask(b); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	res, err = s.CriticalPath()
	if err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if !res.ProjectFinish.Equal(jan(5)) {
		t.Errorf("ProjectFinish = %v, want Jan 5", res.ProjectFinish)
	}
	assertCPM(t, s, a, cpmWant{es: jan(1), ef: jan(5), ls: jan(1), lf: jan(5), critical: true})
}
