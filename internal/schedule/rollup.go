package schedule

import (
	"math"
	"sort"
)

// rollup derives a summary's span and completion from its direct children.
// Completion is the working-duration weighted mean of non-milestone
// children, or the share of finished milestones when every child is a
// milestone. Otherwise completion is left alone.
func (s *Store) rollup(t *Task) {
	kids := s.children[t.ID]
	if !t.IsSummary || len(kids) == 0 {
		return
	}

	first := s.tasks[kids[0]]
	start, end := first.Start, first.End
	var weighted, total float64
	var milestones, done int
	for _, id := range kids {
		c := s.tasks[id]
		if c.Start.Before(start) {
			start = c.Start
		}
		if c.End.After(end) {
			end = c.End
		}
		if c.IsMilestone {
			milestones++
			if c.PercentComplete == 100 {
				done++
			}
			continue
		}
		d := float64(s.duration(c))
		weighted += d * float64(c.PercentComplete)
		total += d
	}

	t.Start, t.End = start, end
	switch {
	case milestones < len(kids) && total > 0:
		t.PercentComplete = int(math.Round(weighted / total))
	case milestones == len(kids):
		t.PercentComplete = int(math.Round(100 * float64(done) / float64(len(kids))))
	}
}

// rollupAll rolls up every summary, deepest first.
func (s *Store) rollupAll() {
	var summaries []int
	depth := make(map[int]int)
	for id, t := range s.tasks {
		if t.IsSummary {
			summaries = append(summaries, id)
			depth[id] = s.Level(id)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if depth[a] != depth[b] {
			return depth[a] > depth[b]
		}
		return a < b
	})
	for _, id := range summaries {
		s.rollup(s.tasks[id])
	}
}
