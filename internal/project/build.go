package project

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
	"github.com/papapumpkin/planiflow/internal/schedule"
)

// Build creates a store holding p, scheduled against cal. A calendar record
// in p overrides the matching settings of cal. Records that cannot be
// parsed are skipped and reported; the rest of the project still loads. The
// store is rescheduled before it is returned.
func Build(p Project, cal *calendar.Calendar, opts ...schedule.Option) (*schedule.Store, []error) {
	var problems []error
	if cal == nil {
		cal = calendar.New()
	}
	if p.Calendar != nil {
		if err := p.Calendar.Apply(cal); err != nil {
			problems = append(problems, fmt.Errorf("calendar: %w", err))
		}
	}

	s := schedule.NewStore(cal, opts...)
	for _, r := range p.Resources {
		if err := s.AddResource(r.toResource()); err != nil {
			problems = append(problems, fmt.Errorf("resource %q: %w", r.Name, err))
		}
	}

	tasks := make([]schedule.Task, 0, len(p.Tasks))
	for _, rec := range p.Tasks {
		t, err := rec.toTask()
		if err != nil {
			problems = append(problems, fmt.Errorf("task %d (%q): %w", rec.ID, rec.Name, err))
			continue
		}
		tasks = append(tasks, t)
	}
	problems = append(problems, s.Import(tasks)...)

	for _, rec := range p.Baselines {
		b, err := rec.toBaseline()
		if err == nil {
			err = s.RestoreBaseline(b)
		}
		if err != nil {
			problems = append(problems, fmt.Errorf("baseline %q: %w", rec.Name, err))
		}
	}

	s.Reschedule()
	return s, problems
}

// Snapshot converts the store back into a project file named name, writing
// dates in format f.
func Snapshot(s *schedule.Store, name string, f DateFormat) Project {
	cal := CalendarRecordOf(s.Calendar())
	p := Project{
		Name:       name,
		NextTaskID: s.NextID(),
		Calendar:   &cal,
		Tasks:      []TaskRecord{},
		Resources:  []ResourceRecord{},
	}
	for _, t := range s.Tasks() {
		p.Tasks = append(p.Tasks, taskRecordOf(t, f))
	}
	for _, r := range s.Resources() {
		p.Resources = append(p.Resources, ResourceRecord{
			Name:           r.Name,
			MaxHoursPerDay: r.MaxHoursPerDay,
			Exceptions:     slices.Clone(r.Exceptions),
			BillingRate:    r.BillingRate,
		})
	}
	for _, b := range s.Baselines() {
		p.Baselines = append(p.Baselines, BaselineRecordOf(b, f))
	}
	return p
}

func (r TaskRecord) toTask() (schedule.Task, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return schedule.Task{}, fmt.Errorf("start date: %w", err)
	}
	end := start
	if !r.IsMilestone || r.EndDate != "" {
		if end, err = ParseDate(r.EndDate); err != nil {
			return schedule.Task{}, fmt.Errorf("end date: %w", err)
		}
	}

	t := schedule.Task{
		ID:              r.ID,
		Name:            r.Name,
		Notes:           r.Notes,
		Start:           start,
		End:             end,
		PercentComplete: r.PercentComplete,
		IsMilestone:     r.IsMilestone,
		ScheduleType:    parseScheduleType(r.ScheduleType),
		WBS:             r.WBS,
	}
	if r.ParentID != nil {
		t.ParentID = *r.ParentID
	}
	for _, v := range r.Predecessors {
		dep, err := normalizePredecessor(v)
		if err != nil {
			return schedule.Task{}, err
		}
		t.Predecessors = append(t.Predecessors, dep)
	}
	for _, v := range r.AssignedResources {
		a, err := normalizeAssignment(v)
		if err != nil {
			return schedule.Task{}, err
		}
		t.Resources = append(t.Resources, a)
	}
	return t, nil
}

func taskRecordOf(t schedule.Task, f DateFormat) TaskRecord {
	rec := TaskRecord{
		ID:                t.ID,
		Name:              t.Name,
		StartDate:         FormatDate(t.Start, f),
		EndDate:           FormatDate(t.End, f),
		PercentComplete:   t.PercentComplete,
		Predecessors:      []any{},
		AssignedResources: []any{},
		Notes:             t.Notes,
		IsSummary:         t.IsSummary,
		IsMilestone:       t.IsMilestone,
		WBS:               t.WBS,
		ScheduleType:      scheduleTypeName(t.ScheduleType),
	}
	if t.ParentID != schedule.NoParent {
		parent := t.ParentID
		rec.ParentID = &parent
	}
	for _, dep := range t.Predecessors {
		rec.Predecessors = append(rec.Predecessors, []any{dep.PredecessorID, dep.Type.String(), dep.LagDays})
	}
	for _, a := range t.Resources {
		rec.AssignedResources = append(rec.AssignedResources, []any{a.Name, a.Allocation})
	}
	return rec
}

func (r ResourceRecord) toResource() schedule.Resource {
	return schedule.Resource{
		Name:           r.Name,
		MaxHoursPerDay: r.MaxHoursPerDay,
		BillingRate:    r.BillingRate,
		Exceptions:     slices.Clone(r.Exceptions),
	}
}

// Apply copies the record's settings onto cal. An empty working-day list, a
// non-positive hours value, or an absent holiday list leaves that setting
// alone.
func (r CalendarRecord) Apply(cal *calendar.Calendar) error {
	if len(r.WorkingDays) > 0 {
		days := make([]time.Weekday, 0, len(r.WorkingDays))
		for _, i := range r.WorkingDays {
			d, err := calendar.WeekdayAt(i)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
		if err := cal.SetWorkingDays(days); err != nil {
			return err
		}
	}
	if r.HoursPerDay > 0 {
		cal.SetHoursPerDay(r.HoursPerDay)
	}
	if r.NonWorkingDays == nil {
		return nil
	}
	return cal.SetHolidays(r.NonWorkingDays)
}

// CalendarRecordOf returns the persisted form of cal.
func CalendarRecordOf(cal *calendar.Calendar) CalendarRecord {
	rec := CalendarRecord{
		HoursPerDay:    cal.HoursPerDay(),
		NonWorkingDays: cal.Holidays(),
	}
	for _, d := range cal.WorkingWeekdays() {
		rec.WorkingDays = append(rec.WorkingDays, calendar.DayIndex(d))
	}
	slices.Sort(rec.WorkingDays)
	return rec
}

func (r BaselineRecord) toBaseline() (schedule.Baseline, error) {
	b := schedule.Baseline{ID: r.ID, Name: r.Name}
	if r.CreatedDate != "" {
		created, err := parseTimestamp(r.CreatedDate)
		if err != nil {
			return schedule.Baseline{}, fmt.Errorf("created date: %w", err)
		}
		b.Created = created
	}
	for key, snap := range r.TaskSnapshots {
		id := snap.TaskID
		if id == 0 {
			n, err := strconv.Atoi(key)
			if err != nil {
				return schedule.Baseline{}, fmt.Errorf("%w: snapshot key %q", ErrBadRecord, key)
			}
			id = n
		}
		start, err := ParseDate(snap.StartDate)
		if err != nil {
			return schedule.Baseline{}, fmt.Errorf("snapshot %d start: %w", id, err)
		}
		end, err := ParseDate(snap.EndDate)
		if err != nil {
			return schedule.Baseline{}, fmt.Errorf("snapshot %d end: %w", id, err)
		}
		b.Tasks = append(b.Tasks, schedule.TaskSnapshot{
			TaskID:          id,
			Name:            snap.TaskName,
			Start:           start,
			End:             end,
			Duration:        int(math.Round(snap.Duration)),
			PercentComplete: snap.PercentComplete,
			WBS:             snap.WBS,
		})
	}
	return b, nil
}

// BaselineRecordOf returns the persisted form of b.
func BaselineRecordOf(b schedule.Baseline, f DateFormat) BaselineRecord {
	rec := BaselineRecord{
		ID:            b.ID,
		Name:          b.Name,
		CreatedDate:   formatTimestamp(b.Created, f),
		TaskSnapshots: make(map[string]SnapshotRecord, len(b.Tasks)),
	}
	for _, snap := range b.Tasks {
		rec.TaskSnapshots[strconv.Itoa(snap.TaskID)] = SnapshotRecord{
			TaskID:          snap.TaskID,
			TaskName:        snap.Name,
			StartDate:       FormatDate(snap.Start, f),
			EndDate:         FormatDate(snap.End, f),
			Duration:        float64(snap.Duration),
			PercentComplete: snap.PercentComplete,
			WBS:             snap.WBS,
		}
	}
	return rec
}
