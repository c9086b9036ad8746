package schedule

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClock() time.Time {
	return time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)
}

// newTestStore returns a store on a Monday-to-Friday calendar with no
// holidays and a fixed clock.
func newTestStore(t *testing.T, opts ...calendar.Option) *Store {
	t.Helper()
	cal := calendar.New(append([]calendar.Option{calendar.WithLogger(quietLogger())}, opts...)...)
	return NewStore(cal, WithLogger(quietLogger()), WithClock(testClock))
}

// jan returns a day of January 2024. The 1st is a Monday.
func jan(d int) time.Time { return calendar.Date(2024, time.January, d) }

func span(name string, start, end time.Time, preds ...Dependency) Task {
	return Task{Name: name, Start: start, End: end, Predecessors: preds}
}

func after(id int) Dependency { return Dependency{PredecessorID: id, Type: FinishToStart} }

func mustAdd(t *testing.T, s *Store, task Task, parent int) int {
	t.Helper()
	id, err := s.AddTask(task, parent)
	if err != nil {
		t.Fatalf("AddTask(%q, %d): %v", task.Name, parent, err)
	}
	return id
}

func mustGet(t *testing.T, s *Store, id int) Task {
	t.Helper()
	task, ok := s.GetTask(id)
	if !ok {
		t.Fatalf("task %d not found", id)
	}
	return task
}

func assertDates(t *testing.T, s *Store, id int, start, end time.Time) {
	t.Helper()
	got := mustGet(t, s, id)
	if !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Errorf("task %d dates = %s..%s, want %s..%s", id,
			got.Start.Format(time.DateOnly), got.End.Format(time.DateOnly),
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
}

func taskIDsOf(tasks []Task) []int {
	ids := make([]int, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}
