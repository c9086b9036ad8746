package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBaselines is the number of baselines a project may hold.
const MaxBaselines = 3

// TaskSnapshot is a task's plan as captured in a baseline.
type TaskSnapshot struct {
	TaskID          int
	Name            string
	Start           time.Time
	End             time.Time
	Duration        int // working days
	PercentComplete int
	WBS             string
}

// Baseline is a named, timestamped copy of every task's plan.
type Baseline struct {
	ID      string
	Name    string
	Created time.Time
	Tasks   []TaskSnapshot // ascending TaskID
}

// Snapshot returns the snapshot of taskID.
func (b Baseline) Snapshot(taskID int) (TaskSnapshot, bool) {
	i := sort.Search(len(b.Tasks), func(i int) bool { return b.Tasks[i].TaskID >= taskID })
	if i < len(b.Tasks) && b.Tasks[i].TaskID == taskID {
		return b.Tasks[i], true
	}
	return TaskSnapshot{}, false
}

func (b Baseline) clone() Baseline {
	b.Tasks = append([]TaskSnapshot(nil), b.Tasks...)
	return b
}

// CreateBaseline captures the current plan under name.
func (s *Store) CreateBaseline(name string) (Baseline, error) {
	name = strings.TrimSpace(name)
	if len(s.baselines) >= MaxBaselines {
		return Baseline{}, fmt.Errorf("%w: %d", ErrBaselineLimit, MaxBaselines)
	}
	if s.baselineIndex(name) >= 0 {
		return Baseline{}, fmt.Errorf("%w: %q", ErrDuplicateBaseline, name)
	}
	if len(s.tasks) == 0 {
		return Baseline{}, ErrNoTasks
	}
	b := Baseline{
		ID:      uuid.NewString(),
		Name:    name,
		Created: s.now(),
		Tasks:   make([]TaskSnapshot, 0, len(s.tasks)),
	}
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		b.Tasks = append(b.Tasks, TaskSnapshot{
			TaskID:          id,
			Name:            t.Name,
			Start:           t.Start,
			End:             t.End,
			Duration:        s.duration(t),
			PercentComplete: t.PercentComplete,
			WBS:             t.WBS,
		})
	}
	s.baselines = append(s.baselines, b)
	s.logger.Info("baseline created", "name", name, "tasks", len(b.Tasks))
	return b.clone(), nil
}

// RestoreBaseline adds a previously captured baseline, for example one read
// from disk. The limit and unique names still apply. A missing ID is
// generated.
func (s *Store) RestoreBaseline(b Baseline) error {
	if len(s.baselines) >= MaxBaselines {
		return fmt.Errorf("%w: %d", ErrBaselineLimit, MaxBaselines)
	}
	if s.baselineIndex(b.Name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateBaseline, b.Name)
	}
	b = b.clone()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	sort.Slice(b.Tasks, func(i, j int) bool { return b.Tasks[i].TaskID < b.Tasks[j].TaskID })
	s.baselines = append(s.baselines, b)
	return nil
}

// DeleteBaseline removes the named baseline.
func (s *Store) DeleteBaseline(name string) error {
	i := s.baselineIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrBaselineNotFound, name)
	}
	s.baselines = append(s.baselines[:i], s.baselines[i+1:]...)
	return nil
}

// RenameBaseline renames a baseline. The new name must be free.
func (s *Store) RenameBaseline(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if s.baselineIndex(newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateBaseline, newName)
	}
	i := s.baselineIndex(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrBaselineNotFound, oldName)
	}
	s.baselines[i].Name = newName
	return nil
}

// Baseline returns a copy of the named baseline.
func (s *Store) Baseline(name string) (Baseline, bool) {
	i := s.baselineIndex(name)
	if i < 0 {
		return Baseline{}, false
	}
	return s.baselines[i].clone(), true
}

// Baselines returns copies of all baselines in creation order.
func (s *Store) Baselines() []Baseline {
	out := make([]Baseline, len(s.baselines))
	for i, b := range s.baselines {
		out[i] = b.clone()
	}
	return out
}

func (s *Store) baselineIndex(name string) int {
	for i, b := range s.baselines {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Variance labels how a task moved against its baseline.
type Variance string

// Variance values. Dates use Late/Early/OnTrack; duration uses
// Over/Under/OnTrack.
const (
	OnTrack Variance = "on-track"
	Late    Variance = "late"
	Early   Variance = "early"
	Over    Variance = "over"
	Under   Variance = "under"
	New     Variance = "new"
	Deleted Variance = "deleted"
)

// TaskComparison is one row of a baseline comparison. Variances are
// current minus baseline; date variances count calendar days. For new and
// deleted tasks the missing side is zero and the variances are unset.
type TaskComparison struct {
	TaskID    int
	Name      string
	WBS       string
	IsSummary bool

	Current  TaskSnapshot
	Baseline TaskSnapshot

	StartVariance      int
	EndVariance        int
	DurationVariance   int
	CompletionVariance int

	StartStatus    Variance
	EndStatus      Variance
	DurationStatus Variance
}

// ComparisonSummary aggregates a comparison. Averages are over tasks
// present in both the plan and the baseline.
type ComparisonSummary struct {
	Total                 int
	OnTrack               int
	Late                  int
	Early                 int
	New                   int
	Deleted               int
	AvgDurationVariance   float64
	AvgCompletionVariance float64
}

// Comparison is the current plan measured against one baseline.
type Comparison struct {
	Baseline string
	Created  time.Time
	Tasks    []TaskComparison // ascending TaskID
	Summary  ComparisonSummary
}

// CompareBaseline compares every current task with its snapshot in the
// named baseline and lists baselined tasks that no longer exist.
func (s *Store) CompareBaseline(name string) (Comparison, error) {
	i := s.baselineIndex(name)
	if i < 0 {
		return Comparison{}, fmt.Errorf("%w: %q", ErrBaselineNotFound, name)
	}
	b := s.baselines[i]
	res := Comparison{Baseline: b.Name, Created: b.Created}

	var durSum, pctSum, active int
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		cur := TaskSnapshot{TaskID: id, Name: t.Name, Start: t.Start, End: t.End,
			Duration: s.duration(t), PercentComplete: t.PercentComplete, WBS: t.WBS}
		row := TaskComparison{TaskID: id, Name: t.Name, WBS: t.WBS, IsSummary: t.IsSummary, Current: cur}
		snap, ok := b.Snapshot(id)
		if !ok {
			row.StartStatus, row.EndStatus, row.DurationStatus = New, New, New
			res.Summary.New++
			res.Tasks = append(res.Tasks, row)
			continue
		}
		row.Baseline = snap
		row.StartVariance = calendarDays(snap.Start, t.Start)
		row.EndVariance = calendarDays(snap.End, t.End)
		row.DurationVariance = cur.Duration - snap.Duration
		row.CompletionVariance = t.PercentComplete - snap.PercentComplete
		row.StartStatus = dateVariance(row.StartVariance)
		row.EndStatus = dateVariance(row.EndVariance)
		row.DurationStatus = durationVariance(row.DurationVariance)

		switch row.EndStatus {
		case Late:
			res.Summary.Late++
		case Early:
			res.Summary.Early++
		default:
			res.Summary.OnTrack++
		}
		durSum += row.DurationVariance
		pctSum += row.CompletionVariance
		active++
		res.Tasks = append(res.Tasks, row)
	}

	for _, snap := range b.Tasks {
		if _, ok := s.tasks[snap.TaskID]; ok {
			continue
		}
		res.Tasks = append(res.Tasks, TaskComparison{
			TaskID:         snap.TaskID,
			Name:           snap.Name,
			WBS:            snap.WBS,
			Baseline:       snap,
			StartStatus:    Deleted,
			EndStatus:      Deleted,
			DurationStatus: Deleted,
		})
		res.Summary.Deleted++
	}
	sort.SliceStable(res.Tasks, func(i, j int) bool { return res.Tasks[i].TaskID < res.Tasks[j].TaskID })

	res.Summary.Total = len(res.Tasks)
	if active > 0 {
		res.Summary.AvgDurationVariance = float64(durSum) / float64(active)
		res.Summary.AvgCompletionVariance = float64(pctSum) / float64(active)
	}
	return res, nil
}

func calendarDays(from, to time.Time) int {
	return int(to.Sub(from).Round(24*time.Hour) / (24 * time.Hour))
}

func dateVariance(days int) Variance {
	switch {
	case days > 0:
		return Late
	case days < 0:
		return Early
	default:
		return OnTrack
	}
}

func durationVariance(days int) Variance {
	switch {
	case days > 0:
		return Over
	case days < 0:
		return Under
	default:
		return OnTrack
	}
}
