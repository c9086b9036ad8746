// Package project defines the persisted project file and converts it to and
// from a schedule.Store. Record shapes written by older versions of the file
// format are normalized here, at the boundary, so the engine only ever sees
// one representation.
package project

import (
	"errors"
)

// ErrBadRecord is returned for a predecessor or assignment entry whose shape
// is not recognized.
var ErrBadRecord = errors.New("malformed record")

// ErrUnknownDependencyType is returned for a dependency type other than FS,
// SS, FF, or SF.
var ErrUnknownDependencyType = errors.New("unknown dependency type")

// Project is the on-disk project file.
type Project struct {
	Name       string           `json:"project_name" toml:"project_name"`
	NextTaskID int              `json:"next_task_id,omitempty" toml:"next_task_id,omitempty"`
	Calendar   *CalendarRecord  `json:"calendar,omitempty" toml:"calendar,omitempty"`
	Tasks      []TaskRecord     `json:"tasks" toml:"tasks"`
	Resources  []ResourceRecord `json:"resources" toml:"resources"`
	Baselines  []BaselineRecord `json:"baselines,omitempty" toml:"baselines,omitempty"`
}

// TaskRecord is one persisted task.
//
// Predecessors entries are a bare id, [id, type], or [id, type, lag].
// AssignedResources entries are a bare name (allocation 100) or
// [name, allocation].
type TaskRecord struct {
	ID                int    `json:"id" toml:"id"`
	Name              string `json:"name" toml:"name"`
	StartDate         string `json:"start_date" toml:"start_date"`
	EndDate           string `json:"end_date" toml:"end_date"`
	PercentComplete   int    `json:"percent_complete" toml:"percent_complete"`
	Predecessors      []any  `json:"predecessors" toml:"predecessors"`
	AssignedResources []any  `json:"assigned_resources" toml:"assigned_resources"`
	Notes             string `json:"notes" toml:"notes"`
	ParentID          *int   `json:"parent_id" toml:"parent_id,omitempty"`
	IsSummary         bool   `json:"is_summary" toml:"is_summary"`
	IsMilestone       bool   `json:"is_milestone" toml:"is_milestone"`
	WBS               string `json:"wbs" toml:"wbs"`
	ScheduleType      string `json:"schedule_type" toml:"schedule_type"`
}

// ResourceRecord is one persisted resource.
type ResourceRecord struct {
	Name           string   `json:"name" toml:"name"`
	MaxHoursPerDay float64  `json:"max_hours_per_day" toml:"max_hours_per_day"`
	Exceptions     []string `json:"exceptions" toml:"exceptions"`
	BillingRate    float64  `json:"billing_rate" toml:"billing_rate"`
}

// CalendarRecord is the persisted working calendar. WorkingDays uses the
// Monday=0 numbering.
type CalendarRecord struct {
	WorkingDays    []int    `json:"working_days" toml:"working_days"`
	HoursPerDay    float64  `json:"hours_per_day" toml:"hours_per_day"`
	NonWorkingDays []string `json:"non_working_days" toml:"non_working_days"`
}

// BaselineRecord is one persisted baseline. Snapshots are keyed by the
// decimal task id.
type BaselineRecord struct {
	ID            string                    `json:"id,omitempty" toml:"id,omitempty"`
	Name          string                    `json:"name" toml:"name"`
	CreatedDate   string                    `json:"created_date" toml:"created_date"`
	TaskSnapshots map[string]SnapshotRecord `json:"task_snapshots" toml:"task_snapshots"`
}

// SnapshotRecord is one task as captured by a baseline.
type SnapshotRecord struct {
	TaskID          int     `json:"task_id" toml:"task_id"`
	TaskName        string  `json:"task_name" toml:"task_name"`
	StartDate       string  `json:"start_date" toml:"start_date"`
	EndDate         string  `json:"end_date" toml:"end_date"`
	Duration        float64 `json:"duration" toml:"duration"`
	PercentComplete int     `json:"percent_complete" toml:"percent_complete"`
	WBS             string  `json:"wbs" toml:"wbs"`
}
