package schedule

import "time"

// resolve recomputes the dates of a non-summary Auto task from its
// predecessors. Start constraints (FS, SS) and end constraints (FF, SF) are
// each reduced to their latest candidate.
func (s *Store) resolve(t *Task) {
	dur := s.duration(t)

	var start, end time.Time
	var hasStart, hasEnd bool
	for _, dep := range t.Predecessors {
		pred, ok := s.tasks[dep.PredecessorID]
		if !ok || pred.ID == t.ID {
			s.logger.Debug("skipping dangling predecessor", "task", t.ID, "predecessor", dep.PredecessorID)
			continue
		}
		switch dep.Type {
		case FinishToStart:
			start, hasStart = later(start, hasStart, s.finishToStart(pred.End, dep.LagDays))
		case StartToStart:
			start, hasStart = later(start, hasStart, s.cal.Lag(pred.Start, dep.LagDays))
		case FinishToFinish:
			end, hasEnd = later(end, hasEnd, s.cal.Lag(pred.End, dep.LagDays))
		case StartToFinish:
			end, hasEnd = later(end, hasEnd, s.cal.Lag(pred.Start, dep.LagDays))
		}
	}

	switch {
	case hasStart && hasEnd:
		t.Start, t.End = start, end
		if t.End.Before(t.Start) && !t.IsMilestone {
			s.logger.Warn("conflicting start and finish constraints; keeping duration",
				"task", t.ID, "start", start, "end", end, "days", dur)
			t.End = s.finishFrom(t, start, dur)
		}
	case hasStart:
		t.Start = start
		t.End = s.finishFrom(t, start, dur)
	case hasEnd:
		t.End = end
		t.Start = end
		if !t.IsMilestone {
			t.Start = s.cal.StartFrom(end, dur)
		}
	default:
		anchor, ok := s.anchors[t.ID]
		if !ok {
			anchor = t.Start
		}
		t.Start = anchor
		t.End = s.finishFrom(t, anchor, dur)
	}
	if t.IsMilestone {
		t.End = t.Start
	}
}

// finishToStart is the earliest successor start for an FS edge: lag+1
// working days after end, or |lag|-1 working days before it for a lead.
func (s *Store) finishToStart(end time.Time, lag int) time.Time {
	if lag >= 0 {
		return s.cal.AddWorkingDays(end, lag+1)
	}
	return s.cal.SubtractWorkingDays(end, -lag-1)
}

// startBeforeFinish mirrors finishToStart for the backward pass: the latest
// finish that still lets a successor start at succStart.
func (s *Store) startBeforeFinish(succStart time.Time, lag int) time.Time {
	if lag >= 0 {
		return s.cal.SubtractWorkingDays(succStart, lag+1)
	}
	return s.cal.AddWorkingDays(succStart, -lag-1)
}

func (s *Store) finishFrom(t *Task, start time.Time, dur int) time.Time {
	if t.IsMilestone {
		return start
	}
	return s.cal.FinishFrom(start, dur)
}

func later(cur time.Time, set bool, candidate time.Time) (time.Time, bool) {
	if !set || candidate.After(cur) {
		return candidate, true
	}
	return cur, true
}

func earlier(cur time.Time, set bool, candidate time.Time) (time.Time, bool) {
	if !set || candidate.Before(cur) {
		return candidate, true
	}
	return cur, true
}
