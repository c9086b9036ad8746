package schedule

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

func TestCreateBaseline(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if _, err := s.CreateBaseline("empty"); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("CreateBaseline on empty store error = %v, want ErrNoTasks", err)
	}

	a := mustAdd(t, s, span("A", jan(1), jan(5)), NoParent)
	b, err := s.CreateBaseline("plan")
	if err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}
	if _, err := uuid.Parse(b.ID); err != nil {
		t.Errorf("baseline ID %q is not a uuid: %v", b.ID, err)
	}
	if !b.Created.Equal(testClock()) {
		t.Errorf("Created = %v, want %v", b.Created, testClock())
	}
	want := []TaskSnapshot{{TaskID: a, Name: "A", Start: jan(1), End: jan(5), Duration: 5, WBS: "1"}}
	if diff := cmp.Diff(want, b.Tasks); diff != "" {
		t.Errorf("snapshots (-want +got):\n%s", diff)
	}

	if _, err := s.CreateBaseline("plan"); !errors.Is(err, ErrDuplicateBaseline) {
		t.Errorf("duplicate CreateBaseline error = %v, want ErrDuplicateBaseline", err)
	}
	for _, name := range []string{"second", "third"} {
		if _, err := s.CreateBaseline(name); err != nil {
			t.Fatalf("CreateBaseline(%q): %v", name, err)
		}
	}
	if _, err := s.CreateBaseline("fourth"); !errors.Is(err, ErrBaselineLimit) {
		t.Errorf("fourth CreateBaseline error = %v, want ErrBaselineLimit", err)
	}
}

func TestBaselineManagement(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	mustAdd(t, s, span("A", jan(1), jan(1)), NoParent)
	for _, name := range []string{"one", "two"} {
		if _, err := s.CreateBaseline(name); err != nil {
			t.Fatalf("CreateBaseline(%q): %v", name, err)
		}
	}

	if err := s.RenameBaseline("one", "two"); !errors.Is(err, ErrDuplicateBaseline) {
		t.Errorf("RenameBaseline onto existing error = %v, want ErrDuplicateBaseline", err)
	}
	if err := s.RenameBaseline("nope", "three"); !errors.Is(err, ErrBaselineNotFound) {
		t.Errorf("RenameBaseline(nope) error = %v, want ErrBaselineNotFound", err)
	}
	if err := s.RenameBaseline("one", "first"); err != nil {
		t.Fatalf("RenameBaseline: %v", err)
	}
	if err := s.DeleteBaseline("two"); err != nil {
		t.Fatalf("DeleteBaseline: %v", err)
	}
	if err := s.DeleteBaseline("two"); !errors.Is(err, ErrBaselineNotFound) {
		t.Errorf("second DeleteBaseline error = %v, want ErrBaselineNotFound", err)
	}

	var names []string
	for _, b := range s.Baselines() {
		names = append(names, b.Name)
	}
	if diff := cmp.Diff([]string{"first"}, names); diff != "" {
		t.Errorf("Baselines (-want +got):\n%s", diff)
	}

	restored := Baseline{Name: "disk", Tasks: []TaskSnapshot{{TaskID: 9}, {TaskID: 2}}}
	if err := s.RestoreBaseline(restored); err != nil {
		t.Fatalf("RestoreBaseline: %v", err)
	}
	got, ok := s.Baseline("disk")
	if !ok || got.ID == "" {
		t.Fatalf("Baseline(disk) = %+v, %v", got, ok)
	}
	if got.Tasks[0].TaskID != 2 {
		t.Errorf("restored snapshots not sorted: %+v", got.Tasks)
	}
	if err := s.RestoreBaseline(restored); !errors.Is(err, ErrDuplicateBaseline) {
		t.Errorf("second RestoreBaseline error = %v, want ErrDuplicateBaseline", err)
	}
}

func TestCompareBaseline(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := mustAdd(t, s, span("A", jan(1), jan(5)), NoParent)
	b := mustAdd(t, s, span("B", jan(1), jan(3), after(a)), NoParent)
	d := mustAdd(t, s, span("D", jan(1), jan(1)), NoParent)
	if _, err := s.CreateBaseline("plan"); err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}

	if err := s.UpdateTask(a, Task{Name: "A", Start: jan(1), End: jan(9), PercentComplete: 50}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if err := s.DeleteTask(d); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	n := mustAdd(t, s, span("N", jan(1), jan(1)), NoParent)

	cmpRes, err := s.CompareBaseline("plan")
	if err != nil {
		t.Fatalf("CompareBaseline: %v", err)
	}

	type row struct {
		ID                               int
		Start, End, Duration             Variance
		StartVar, EndVar, DurVar, PctVar int
	}
	var got []row
	for _, c := range cmpRes.Tasks {
		got = append(got, row{c.TaskID, c.StartStatus, c.EndStatus, c.DurationStatus,
			c.StartVariance, c.EndVariance, c.DurationVariance, c.CompletionVariance})
	}
	want := []row{
		{a, OnTrack, Late, Over, 0, 4, 2, 50},
		{b, Late, Late, OnTrack, 2, 2, 0, 0},
		{d, Deleted, Deleted, Deleted, 0, 0, 0, 0},
		{n, New, New, New, 0, 0, 0, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("comparison rows (-want +got):\n%s", diff)
	}

	wantSummary := ComparisonSummary{
		Total: 4, Late: 2, New: 1, Deleted: 1,
		AvgDurationVariance: 1, AvgCompletionVariance: 25,
	}
	if diff := cmp.Diff(wantSummary, cmpRes.Summary, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}

	if _, err := s.CompareBaseline("missing"); !errors.Is(err, ErrBaselineNotFound) {
		t.Errorf("CompareBaseline(missing) error = %v, want ErrBaselineNotFound", err)
	}
}
