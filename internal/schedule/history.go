package schedule

// DefaultHistoryLimit is the undo depth used when NewHistory gets no limit.
const DefaultHistoryLimit = 100

// History gives a Store undo and redo. Each recorded step keeps a full
// copy of the store taken before it ran. Changes made to the store without
// going through Do are not recorded, and undoing past them discards them.
type History struct {
	s     *Store
	limit int
	undo  []storeSnapshot
	redo  []storeSnapshot
}

// NewHistory wraps s. A limit of zero or less means DefaultHistoryLimit;
// the oldest step is dropped once the limit is reached.
func NewHistory(s *Store, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{s: s, limit: limit}
}

// Do runs fn as one undoable step. If fn fails, every change it made is
// rolled back, nothing is recorded, and its error is returned. A
// successful step clears the redo stack.
func (h *History) Do(fn func(*Store) error) error {
	before := h.s.snapshot()
	if err := fn(h.s); err != nil {
		h.s.restore(before)
		return err
	}
	h.undo = append(h.undo, before)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = h.redo[:0]
	return nil
}

// Undo reverts the most recent step. It reports false when there is none.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, h.s.snapshot())
	h.s.restore(prev)
	h.s.logger.Debug("undo", "remaining", len(h.undo))
	return true
}

// Redo reapplies the most recently undone step. It reports false when
// there is none.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, h.s.snapshot())
	h.s.restore(next)
	h.s.logger.Debug("redo", "remaining", len(h.redo))
	return true
}

// CanUndo reports whether Undo has a step to revert.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has a step to reapply.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
