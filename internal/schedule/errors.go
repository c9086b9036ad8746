package schedule

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/planiflow/internal/dag"
)

// ErrTaskNotFound is returned when an operation references a missing task.
var ErrTaskNotFound = errors.New("task not found")

// ErrDuplicateTask is returned by Import for a repeated task id.
var ErrDuplicateTask = errors.New("duplicate task id")

// ErrParentNotFound is returned when a parent id does not exist.
var ErrParentNotFound = errors.New("parent task not found")

// ErrCycle is returned when a change would make the schedule circular,
// either through predecessor edges or through a summary and its subtasks.
// It wraps dag.ErrCycle.
var ErrCycle = fmt.Errorf("circular dependency: %w", dag.ErrCycle)

// ErrInvalidMove is returned when a task would be moved under itself or one
// of its descendants.
var ErrInvalidMove = errors.New("invalid move")

// ErrMilestoneParent is returned when a milestone would gain children.
var ErrMilestoneParent = errors.New("milestone cannot have subtasks")

// ErrInvalidResource is returned for a resource without a name.
var ErrInvalidResource = errors.New("invalid resource")

// ErrDuplicateResource is returned when a resource name is already taken.
var ErrDuplicateResource = errors.New("duplicate resource")

// ErrResourceNotFound is returned when a resource name does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// ErrBaselineLimit is returned when MaxBaselines baselines already exist.
var ErrBaselineLimit = errors.New("baseline limit reached")

// ErrDuplicateBaseline is returned when a baseline name is already taken.
var ErrDuplicateBaseline = errors.New("duplicate baseline")

// ErrBaselineNotFound is returned when a baseline name does not exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// ErrNoTasks is returned when an operation needs at least one task.
var ErrNoTasks = errors.New("project has no tasks")

// ErrNoIterations is returned by Simulate for a non-positive iteration count.
var ErrNoIterations = errors.New("simulation needs at least one iteration")
