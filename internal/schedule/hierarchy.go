package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// regenerateWBS renumbers the outline: top-level tasks are "1", "2", ...
// and children extend their parent's code ("1.1", "1.2"). Siblings are
// numbered in id order.
func (s *Store) regenerateWBS() {
	type frame struct {
		id     int
		prefix string
	}
	var stack []frame
	push := func(parent int, prefix string) {
		kids := s.children[parent]
		for i := len(kids) - 1; i >= 0; i-- {
			code := strconv.Itoa(i + 1)
			if prefix != "" {
				code = prefix + "." + code
			}
			stack = append(stack, frame{id: kids[i], prefix: code})
		}
	}
	push(NoParent, "")
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t, ok := s.tasks[f.id]; ok {
			t.WBS = f.prefix
		}
		push(f.id, f.prefix)
	}
}

// previousSibling returns the nearest sibling of id with a lower id.
func (s *Store) previousSibling(id int) (int, bool) {
	t := s.tasks[id]
	prev, found := 0, false
	for _, k := range s.children[t.ParentID] {
		if k >= id {
			break
		}
		prev, found = k, true
	}
	return prev, found
}

// IndentTasks moves each task under its previous sibling, processing ids in
// ascending order. It returns the new parent for each task that moved. A
// task without a previous sibling, or whose sibling is a milestone, is
// skipped with an error; moves already made are kept.
func (s *Store) IndentTasks(ids []int) (map[int]int, error) {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	moved := make(map[int]int)
	var errs []error
	for _, id := range sorted {
		if _, ok := s.tasks[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: %d", ErrTaskNotFound, id))
			continue
		}
		prev, ok := s.previousSibling(id)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: task %d has no previous sibling", ErrInvalidMove, id))
			continue
		}
		if err := s.MoveTask(id, prev); err != nil {
			errs = append(errs, fmt.Errorf("indent %d: %w", id, err))
			continue
		}
		moved[id] = prev
	}
	return moved, errors.Join(errs...)
}

// OutdentTasks moves each task up one level, next to its current parent.
// Top-level tasks are skipped with an error.
func (s *Store) OutdentTasks(ids []int) (map[int]int, error) {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	moved := make(map[int]int)
	var errs []error
	for _, id := range sorted {
		t, ok := s.tasks[id]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %d", ErrTaskNotFound, id))
			continue
		}
		if t.ParentID == NoParent {
			errs = append(errs, fmt.Errorf("%w: task %d is already top level", ErrInvalidMove, id))
			continue
		}
		grand := s.tasks[t.ParentID].ParentID
		if err := s.MoveTask(id, grand); err != nil {
			errs = append(errs, fmt.Errorf("outdent %d: %w", id, err))
			continue
		}
		moved[id] = grand
	}
	return moved, errors.Join(errs...)
}
