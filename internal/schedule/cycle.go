package schedule

import (
	"fmt"

	"github.com/papapumpkin/planiflow/internal/dag"
)

// WouldCreateCycle reports whether adding predID as a predecessor of taskID
// would close a loop in the predecessor graph. A self-reference is not
// reported; such edges are dropped instead.
func (s *Store) WouldCreateCycle(taskID, predID int) bool {
	if taskID == predID {
		return false
	}
	return s.graph.WouldCreateCycle(taskID, predID)
}

// pending is a proposed parent and predecessor list for one task.
type pending struct {
	id     int
	parent int
	preds  []Dependency
	fresh  bool // id is not in the store yet
}

// checkLinks rejects a proposal that would make the schedule circular. Two
// graphs are checked: predecessor edges alone, and predecessor edges plus
// an edge from every summary to each of its children, since a summary's
// dates derive from its children.
func (s *Store) checkLinks(p pending) error {
	if !p.fresh {
		for _, dep := range p.preds {
			if s.WouldCreateCycle(p.id, dep.PredecessorID) {
				return fmt.Errorf("%w: task %d cannot depend on %d", ErrCycle, p.id, dep.PredecessorID)
			}
		}
	}
	if _, err := s.scheduleGraph(&p).TopologicalSort(); err != nil {
		return fmt.Errorf("%w: task %d links conflict with its outline position", ErrCycle, p.id)
	}
	return nil
}

// scheduleGraph builds the evaluation-order graph: every task depends on its
// predecessors, and every summary depends on its children. When p is not
// nil its parent and predecessors replace the stored ones.
func (s *Store) scheduleGraph(p *pending) *dag.DAG {
	g := dag.New()
	for id := range s.tasks {
		_ = g.AddNode(id)
	}
	if p != nil && p.fresh {
		_ = g.AddNode(p.id)
	}

	link := func(id, parent int, preds []Dependency) {
		for _, dep := range preds {
			pred := dep.PredecessorID
			// Dangling references to a not-yet-created id stay dangling.
			if pred == id || !g.Has(pred) || (p != nil && p.fresh && pred == p.id) {
				continue
			}
			_ = g.Link(id, pred)
		}
		if parent != NoParent && g.Has(parent) {
			_ = g.Link(parent, id)
		}
	}
	for id, t := range s.tasks {
		if p != nil && id == p.id {
			continue
		}
		link(id, t.ParentID, t.Predecessors)
	}
	if p != nil {
		for _, dep := range p.preds {
			if dep.PredecessorID != p.id && g.Has(dep.PredecessorID) {
				_ = g.Link(p.id, dep.PredecessorID)
			}
		}
		if p.parent != NoParent && g.Has(p.parent) {
			_ = g.Link(p.parent, p.id)
		}
	}
	return g
}
