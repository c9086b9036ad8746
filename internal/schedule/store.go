package schedule

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
	"github.com/papapumpkin/planiflow/internal/dag"
)

// Store owns a project's tasks, resources, and baselines, and keeps the
// schedule consistent across every mutation.
type Store struct {
	cal    *calendar.Calendar
	logger *slog.Logger
	now    func() time.Time

	tasks    map[int]*Task
	children map[int][]int // parent id → ascending child ids; NoParent keys the top level
	graph    *dag.DAG      // predecessor edges only
	anchors  map[int]time.Time
	nextID   int

	resources     map[string]*Resource
	resourceOrder []string

	baselines []Baseline
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp baselines.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store scheduling against cal. A nil cal means
// calendar.New().
func NewStore(cal *calendar.Calendar, opts ...Option) *Store {
	if cal == nil {
		cal = calendar.New()
	}
	s := &Store{
		cal:       cal,
		logger:    slog.Default(),
		now:       time.Now,
		tasks:     make(map[int]*Task),
		children:  make(map[int][]int),
		graph:     dag.New(),
		anchors:   make(map[int]time.Time),
		nextID:    1,
		resources: make(map[string]*Resource),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar returns the calendar the store schedules against.
func (s *Store) Calendar() *calendar.Calendar { return s.cal }

// SetCalendar replaces the calendar and reschedules every task.
func (s *Store) SetCalendar(cal *calendar.Calendar) {
	if cal == nil {
		return
	}
	s.cal = cal
	s.Reschedule()
}

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// NextID returns the id the next AddTask will allocate.
func (s *Store) NextID() int { return s.nextID }

// GetTask returns a copy of the task with the given id.
func (s *Store) GetTask(id int) (Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Tasks returns copies of all tasks in ascending id order.
func (s *Store) Tasks() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, id := range s.taskIDs() {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

// GetChildTasks returns the direct children of parentID in id order.
// NoParent yields the top-level tasks.
func (s *Store) GetChildTasks(parentID int) []Task {
	kids := s.children[parentID]
	out := make([]Task, 0, len(kids))
	for _, id := range kids {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

// GetTopLevelTasks returns tasks without a parent in id order.
func (s *Store) GetTopLevelTasks() []Task {
	return s.GetChildTasks(NoParent)
}

// GetAllDescendants returns every task below id in pre-order.
func (s *Store) GetAllDescendants(id int) []Task {
	ids := s.descendantIDs(id)
	out := make([]Task, 0, len(ids))
	for _, d := range ids {
		out = append(out, s.tasks[d].clone())
	}
	return out
}

// GetSuccessors returns the tasks that list id as a predecessor.
func (s *Store) GetSuccessors(id int) []Task {
	deps := s.graph.Dependents(id)
	out := make([]Task, 0, len(deps))
	for _, d := range deps {
		if t, ok := s.tasks[d]; ok {
			out = append(out, t.clone())
		}
	}
	return out
}

// Level returns the depth of id in the outline; top-level tasks are at 0.
// It returns -1 for an unknown id.
func (s *Store) Level(id int) int {
	t, ok := s.tasks[id]
	if !ok {
		return -1
	}
	level := 0
	for seen := 0; t.ParentID != NoParent && seen < len(s.tasks); seen++ {
		parent, ok := s.tasks[t.ParentID]
		if !ok {
			break
		}
		level++
		t = parent
	}
	return level
}

// Tracks partitions the tasks into chains that share no dependency edges.
func (s *Store) Tracks() ([]dag.Track, error) {
	return s.graph.ComputeTracks()
}

// Waves groups tasks into dependency waves: wave 1 has no predecessors,
// wave 2 depends only on wave 1, and so on.
func (s *Store) Waves() ([]dag.Wave, error) {
	return s.graph.ComputeWaves()
}

// AddTask inserts t under parentID and schedules it. The store allocates the
// id; t.ID and the hierarchy fields of t are ignored.
func (s *Store) AddTask(t Task, parentID int) (int, error) {
	return s.addTask(t, s.nextID, parentID)
}

func (s *Store) addTask(t Task, id, parentID int) (int, error) {
	if err := s.checkParent(parentID); err != nil {
		return 0, err
	}
	t = t.clone()
	t.ID = id
	t.ParentID = parentID
	t.IsSummary = false
	t.WBS = ""
	t.CPM = CPMFields{}
	s.normalize(&t)
	if err := s.checkLinks(pending{id: id, parent: parentID, preds: t.Predecessors, fresh: true}); err != nil {
		return 0, err
	}

	s.stripRefsTo(id)
	if err := s.graph.AddNode(id); err != nil {
		return 0, fmt.Errorf("add task %d: %w", id, err)
	}
	if err := s.graph.SetDependencies(id, t.predecessorIDs()); err != nil {
		_ = s.graph.Remove(id)
		return 0, fmt.Errorf("%w: task %d: %v", ErrCycle, id, err)
	}
	s.tasks[id] = &t
	s.anchors[id] = t.Start
	s.attach(id, parentID)
	s.nextID = max(s.nextID, id+1)

	s.regenerateWBS()
	s.propagate(id)
	s.logger.Debug("task added", "id", id, "parent", parentID)
	return id, nil
}

// UpdateTask replaces the editable fields of task id with those of t and
// reschedules. Hierarchy fields (ID, ParentID, IsSummary, WBS) are kept.
// Summaries are always Auto; milestones collapse to zero duration. Editing
// the start date moves the task's anchor.
func (s *Store) UpdateTask(id int, t Task) error {
	cur, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	t = t.clone()
	t.ID = id
	t.ParentID = cur.ParentID
	t.IsSummary = cur.IsSummary
	t.WBS = cur.WBS
	t.CPM = cur.CPM
	if t.IsSummary {
		if t.IsMilestone {
			return fmt.Errorf("%w: summary task %d", ErrMilestoneParent, id)
		}
		t.ScheduleType = Auto
	}
	s.normalize(&t)
	if err := s.checkLinks(pending{id: id, parent: t.ParentID, preds: t.Predecessors}); err != nil {
		return err
	}
	if err := s.graph.SetDependencies(id, t.predecessorIDs()); err != nil {
		return fmt.Errorf("%w: task %d: %v", ErrCycle, id, err)
	}

	if !t.Start.Equal(cur.Start) {
		s.anchors[id] = t.Start
	}
	*cur = t
	s.propagate(id)
	return nil
}

// DeleteTask removes id and all of its descendants, strips references to
// them from remaining tasks, and demotes a parent left without children.
func (s *Store) DeleteTask(id int) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	doomed := append([]int{id}, s.descendantIDs(id)...)
	gone := make(map[int]bool, len(doomed))
	for _, d := range doomed {
		gone[d] = true
	}

	var seeds []int
	for _, d := range doomed {
		for _, succ := range s.graph.Dependents(d) {
			if !gone[succ] {
				seeds = append(seeds, succ)
			}
		}
	}

	parent := t.ParentID
	s.detach(id)
	for _, d := range doomed {
		delete(s.tasks, d)
		delete(s.children, d)
		delete(s.anchors, d)
		_ = s.graph.Remove(d)
	}
	for _, rest := range s.tasks {
		rest.Predecessors = slices.DeleteFunc(rest.Predecessors, func(dep Dependency) bool {
			return gone[dep.PredecessorID]
		})
	}
	if _, ok := s.tasks[parent]; ok {
		seeds = append(seeds, parent)
	}

	s.regenerateWBS()
	s.propagate(seeds...)
	s.logger.Debug("task deleted", "id", id, "cascade", len(doomed))
	return nil
}

// MoveTask reparents id under newParentID, or to the top level for
// NoParent. A task cannot move under itself, a descendant, or a milestone.
func (s *Store) MoveTask(id, newParentID int) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	if newParentID == id || slices.Contains(s.descendantIDs(id), newParentID) {
		return fmt.Errorf("%w: task %d under %d", ErrInvalidMove, id, newParentID)
	}
	if err := s.checkParent(newParentID); err != nil {
		return err
	}
	if t.ParentID == newParentID {
		return nil
	}
	if err := s.checkLinks(pending{id: id, parent: newParentID, preds: t.Predecessors}); err != nil {
		return err
	}

	old := t.ParentID
	s.detach(id)
	s.attach(id, newParentID)
	s.regenerateWBS()

	seeds := []int{id}
	if _, ok := s.tasks[old]; ok {
		seeds = append(seeds, old)
	}
	s.propagate(seeds...)
	return nil
}

// checkParent validates parentID as a target for new children.
func (s *Store) checkParent(parentID int) error {
	if parentID == NoParent {
		return nil
	}
	p, ok := s.tasks[parentID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrParentNotFound, parentID)
	}
	if p.IsMilestone {
		return fmt.Errorf("%w: %d", ErrMilestoneParent, parentID)
	}
	return nil
}

// normalize enforces per-task invariants that need no other task.
func (s *Store) normalize(t *Task) {
	t.Start = calendar.Truncate(t.Start)
	t.End = calendar.Truncate(t.End)
	if t.End.Before(t.Start) {
		t.End = t.Start
	}
	if t.IsMilestone {
		t.End = t.Start
	}
	t.PercentComplete = min(100, max(0, t.PercentComplete))
	t.Predecessors = slices.DeleteFunc(t.Predecessors, func(dep Dependency) bool {
		return dep.PredecessorID == t.ID
	})
}

// attach links id under parent and promotes the parent to a summary.
func (s *Store) attach(id, parent int) {
	kids := s.children[parent]
	pos, _ := slices.BinarySearch(kids, id)
	s.children[parent] = slices.Insert(kids, pos, id)
	s.tasks[id].ParentID = parent
	if p, ok := s.tasks[parent]; ok {
		p.IsSummary = true
		p.ScheduleType = Auto
	}
}

// detach unlinks id from its parent and demotes a parent left childless.
func (s *Store) detach(id int) {
	parent := s.tasks[id].ParentID
	kids := slices.DeleteFunc(s.children[parent], func(k int) bool { return k == id })
	if len(kids) > 0 || parent == NoParent {
		s.children[parent] = kids
		return
	}
	delete(s.children, parent)
	if p, ok := s.tasks[parent]; ok {
		p.IsSummary = false
		s.anchors[parent] = p.Start
	}
}

// stripRefsTo removes dangling predecessor references to an id that is
// about to be taken by a new task.
func (s *Store) stripRefsTo(id int) {
	for _, t := range s.tasks {
		before := len(t.Predecessors)
		t.Predecessors = slices.DeleteFunc(t.Predecessors, func(dep Dependency) bool {
			return dep.PredecessorID == id
		})
		if len(t.Predecessors) != before {
			s.logger.Debug("dropped dangling predecessor", "task", t.ID, "predecessor", id)
		}
	}
}

// descendantIDs walks the outline below id in pre-order.
func (s *Store) descendantIDs(id int) []int {
	var out []int
	stack := slices.Clone(s.children[id])
	slices.Reverse(stack)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := s.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

func (s *Store) taskIDs() []int {
	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// duration is the task's length in working days; milestones have none.
func (s *Store) duration(t *Task) int {
	if t.IsMilestone {
		return 0
	}
	return s.cal.WorkingDays(t.Start, t.End)
}
