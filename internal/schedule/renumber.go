package schedule

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/papapumpkin/planiflow/internal/dag"
)

// InsertBefore inserts t as a sibling of refID, taking refID's id. Every
// id at or above it shifts up by one, and all references follow. t's
// predecessor ids are read in the numbering before the shift.
func (s *Store) InsertBefore(t Task, refID int) (int, error) {
	return s.insertAt(t, refID, refID)
}

// InsertAfter inserts t as a sibling of refID with id refID+1, shifting
// later ids up by one.
func (s *Store) InsertAfter(t Task, refID int) (int, error) {
	return s.insertAt(t, refID, refID+1)
}

func (s *Store) insertAt(t Task, refID, pivot int) (int, error) {
	ref, ok := s.tasks[refID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrTaskNotFound, refID)
	}
	parent := ref.ParentID

	snap := s.snapshot()
	s.shiftFrom(pivot)
	shift := shifter(pivot)
	t = t.clone()
	for i := range t.Predecessors {
		t.Predecessors[i].PredecessorID = shift(t.Predecessors[i].PredecessorID)
	}
	id, err := s.addTask(t, pivot, shift(parent))
	if err != nil {
		s.restore(snap)
		return 0, err
	}
	s.logger.Debug("task inserted", "id", id, "ref", refID)
	return id, nil
}

// shifter maps an id to its value after making room at pivot.
func shifter(pivot int) func(int) int {
	return func(id int) int {
		if id >= pivot {
			return id + 1
		}
		return id
	}
}

// shiftFrom renumbers every id >= pivot to id+1 across tasks, the outline,
// anchors, and baseline snapshots, then rebuilds the predecessor graph.
func (s *Store) shiftFrom(pivot int) {
	shift := shifter(pivot)

	tasks := make(map[int]*Task, len(s.tasks))
	for id, t := range s.tasks {
		t.ID = shift(id)
		if t.ParentID != NoParent {
			t.ParentID = shift(t.ParentID)
		}
		for i := range t.Predecessors {
			t.Predecessors[i].PredecessorID = shift(t.Predecessors[i].PredecessorID)
		}
		tasks[t.ID] = t
	}
	s.tasks = tasks

	children := make(map[int][]int, len(s.children))
	for parent, kids := range s.children {
		moved := make([]int, len(kids))
		for i, k := range kids {
			moved[i] = shift(k)
		}
		key := parent
		if parent != NoParent {
			key = shift(parent)
		}
		children[key] = moved
	}
	s.children = children

	anchors := make(map[int]time.Time, len(s.anchors))
	for id, a := range s.anchors {
		anchors[shift(id)] = a
	}
	s.anchors = anchors

	for i := range s.baselines {
		for j := range s.baselines[i].Tasks {
			s.baselines[i].Tasks[j].TaskID = shift(s.baselines[i].Tasks[j].TaskID)
		}
	}
	s.nextID++
	s.rebuildGraph()
}

// rebuildGraph recreates the predecessor graph from the task map.
func (s *Store) rebuildGraph() {
	g := dag.New()
	for id := range s.tasks {
		_ = g.AddNode(id)
	}
	for id, t := range s.tasks {
		for _, pred := range t.predecessorIDs() {
			if pred != id && g.Has(pred) {
				_ = g.Link(id, pred)
			}
		}
	}
	s.graph = g
}

// storeSnapshot is a deep copy of the mutable store state.
type storeSnapshot struct {
	tasks         map[int]*Task
	children      map[int][]int
	anchors       map[int]time.Time
	nextID        int
	resources     map[string]*Resource
	resourceOrder []string
	baselines     []Baseline
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		tasks:         make(map[int]*Task, len(s.tasks)),
		children:      make(map[int][]int, len(s.children)),
		anchors:       maps.Clone(s.anchors),
		nextID:        s.nextID,
		resources:     make(map[string]*Resource, len(s.resources)),
		resourceOrder: slices.Clone(s.resourceOrder),
		baselines:     make([]Baseline, len(s.baselines)),
	}
	for id, t := range s.tasks {
		c := t.clone()
		snap.tasks[id] = &c
	}
	for id, kids := range s.children {
		snap.children[id] = slices.Clone(kids)
	}
	for name, r := range s.resources {
		c := r.clone()
		snap.resources[name] = &c
	}
	for i, b := range s.baselines {
		snap.baselines[i] = b.clone()
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.tasks = snap.tasks
	s.children = snap.children
	s.anchors = snap.anchors
	s.nextID = snap.nextID
	s.resources = snap.resources
	s.resourceOrder = snap.resourceOrder
	s.baselines = snap.baselines
	s.rebuildGraph()
}
