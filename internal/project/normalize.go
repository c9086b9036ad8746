package project

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/papapumpkin/planiflow/internal/schedule"
)

// Schedule type spellings. The long forms are what older files contain and
// what is written back, so files stay readable by earlier versions.
const (
	autoScheduled   = "Auto Scheduled"
	manualScheduled = "Manually Scheduled"
)

// normalizePredecessor accepts a bare id, [id], [id, type], or
// [id, type, lag].
func normalizePredecessor(v any) (schedule.Dependency, error) {
	if id, ok := toInt(v); ok {
		return schedule.Dependency{PredecessorID: id}, nil
	}
	parts, ok := v.([]any)
	if !ok || len(parts) == 0 || len(parts) > 3 {
		return schedule.Dependency{}, fmt.Errorf("%w: predecessor %v", ErrBadRecord, v)
	}
	id, ok := toInt(parts[0])
	if !ok {
		return schedule.Dependency{}, fmt.Errorf("%w: predecessor id %v", ErrBadRecord, parts[0])
	}
	dep := schedule.Dependency{PredecessorID: id}
	if len(parts) > 1 {
		name, ok := parts[1].(string)
		if !ok {
			return schedule.Dependency{}, fmt.Errorf("%w: dependency type %v", ErrBadRecord, parts[1])
		}
		if dep.Type, ok = schedule.ParseDependencyType(name); !ok {
			return schedule.Dependency{}, fmt.Errorf("%w: %q", ErrUnknownDependencyType, name)
		}
	}
	if len(parts) > 2 {
		if dep.LagDays, ok = toInt(parts[2]); !ok {
			return schedule.Dependency{}, fmt.Errorf("%w: lag %v", ErrBadRecord, parts[2])
		}
	}
	return dep, nil
}

// normalizeAssignment accepts a bare name or [name, allocation].
func normalizeAssignment(v any) (schedule.Assignment, error) {
	if name, ok := v.(string); ok {
		return schedule.Assignment{Name: name, Allocation: 100}, nil
	}
	parts, ok := v.([]any)
	if !ok || len(parts) == 0 || len(parts) > 2 {
		return schedule.Assignment{}, fmt.Errorf("%w: resource %v", ErrBadRecord, v)
	}
	name, ok := parts[0].(string)
	if !ok {
		return schedule.Assignment{}, fmt.Errorf("%w: resource name %v", ErrBadRecord, parts[0])
	}
	a := schedule.Assignment{Name: name, Allocation: 100}
	if len(parts) == 2 {
		if a.Allocation, ok = toFloat(parts[1]); !ok {
			return schedule.Assignment{}, fmt.Errorf("%w: allocation %v", ErrBadRecord, parts[1])
		}
	}
	return a, nil
}

// predecessorIDs returns the ids of every well-formed predecessor entry.
func predecessorIDs(r TaskRecord) []int {
	ids := make([]int, 0, len(r.Predecessors))
	for _, v := range r.Predecessors {
		if dep, err := normalizePredecessor(v); err == nil {
			ids = append(ids, dep.PredecessorID)
		}
	}
	return ids
}

func parseScheduleType(s string) schedule.ScheduleType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", strings.ToLower(manualScheduled):
		return schedule.Manual
	default:
		return schedule.Auto
	}
}

func scheduleTypeName(t schedule.ScheduleType) string {
	if t == schedule.Manual {
		return manualScheduled
	}
	return autoScheduled
}

// toInt accepts the number types the JSON and TOML decoders produce.
// Fractional values are rejected.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
