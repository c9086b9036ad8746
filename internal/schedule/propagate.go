package schedule

import (
	"container/heap"
	"time"
)

// worklist is a min-heap of task ids ordered by evaluation rank, then id.
type worklist struct {
	ids  []int
	rank map[int]int
}

func (w *worklist) Len() int { return len(w.ids) }

func (w *worklist) Less(i, j int) bool {
	ri, rj := w.rank[w.ids[i]], w.rank[w.ids[j]]
	if ri != rj {
		return ri < rj
	}
	return w.ids[i] < w.ids[j]
}

func (w *worklist) Swap(i, j int) { w.ids[i], w.ids[j] = w.ids[j], w.ids[i] }

func (w *worklist) Push(x any) { w.ids = append(w.ids, x.(int)) }

func (w *worklist) Pop() any {
	n := len(w.ids) - 1
	id := w.ids[n]
	w.ids = w.ids[:n]
	return id
}

// Reschedule recomputes every task in evaluation order. It is idempotent:
// a second call with no change in between moves no dates.
func (s *Store) Reschedule() {
	s.propagate(s.taskIDs()...)
}

// propagate runs one change wave from seeds. Tasks are taken in
// topological order of the schedule graph, so a task is evaluated only
// after every queued predecessor and every queued child. Auto tasks are
// resolved, summaries are rolled up, and Manual tasks keep their dates
// without propagating to their successors, even as the seed. A non-seed
// task whose dates do not change ends the wave along that path.
func (s *Store) propagate(seeds ...int) {
	ranks, err := s.scheduleGraph(nil).Ranks()
	if err != nil {
		// Unreachable through store operations; id order keeps the wave finite.
		s.logger.Error("schedule graph is circular; falling back to id order", "err", err)
	}
	w := &worklist{rank: ranks}
	queued := make(map[int]bool)
	finalized := make(map[int]bool)
	isSeed := make(map[int]bool, len(seeds))

	enqueue := func(id int) {
		if queued[id] {
			return
		}
		queued[id] = true
		heap.Push(w, id)
	}
	for _, id := range seeds {
		if _, ok := s.tasks[id]; ok {
			isSeed[id] = true
			enqueue(id)
		}
	}

	for w.Len() > 0 {
		id := heap.Pop(w).(int)
		t, ok := s.tasks[id]
		if !ok || finalized[id] {
			continue
		}
		if t.ScheduleType == Manual && !t.IsSummary {
			// Manual dates never push successors; only the rollup sees them.
			finalized[id] = true
			if isSeed[id] && t.ParentID != NoParent {
				enqueue(t.ParentID)
			}
			continue
		}
		before := [2]time.Time{t.Start, t.End}
		if t.IsSummary {
			s.rollup(t)
		} else {
			s.resolve(t)
		}
		unchanged := t.Start.Equal(before[0]) && t.End.Equal(before[1])
		if unchanged && !isSeed[id] {
			continue
		}
		finalized[id] = true

		for _, succ := range s.graph.Dependents(id) {
			if st, ok := s.tasks[succ]; ok && st.ScheduleType == Auto {
				enqueue(succ)
			}
		}
		if t.ParentID != NoParent {
			enqueue(t.ParentID)
		}
	}

	s.rollupAll()
}
