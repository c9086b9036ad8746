package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planiflow/internal/schedule"
)

// Outline is the hierarchy view the task tables walk.
type Outline interface {
	GetTopLevelTasks() []schedule.Task
	GetAllDescendants(id int) []schedule.Task
	Level(id int) int
}

// ScheduleSource adds the project span to an Outline.
type ScheduleSource interface {
	Outline
	ProjectStart() (time.Time, bool)
	ProjectEnd() (time.Time, bool)
	OverallCompletion() float64
}

// Schedule writes the task table in outline order with a status column and
// the overall completion.
func (p *Printer) Schedule(s ScheduleSource) {
	tasks := outline(s)
	statuses := make([]schedule.Status, len(tasks))
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		statuses[i] = schedule.StatusOf(t, p.today)
		rows = append(rows, []string{
			t.WBS,
			strconv.Itoa(t.ID),
			indent(t.Name, s.Level(t.ID)),
			p.date(t.Start),
			p.date(t.End),
			fmt.Sprintf("%d%%", t.PercentComplete),
			predecessorList(t.Predecessors),
			Label(statuses[i]),
		})
	}

	p.table(
		[]string{"WBS", "ID", "Task", "Start", "Finish", "Done", "Predecessors", "Status"},
		rows,
		func(row, col int) lipgloss.Style {
			st := p.r.NewStyle()
			if tasks[row].IsSummary {
				st = st.Bold(true)
			}
			if col == 7 {
				st = st.Foreground(p.palette.Color(statuses[row]))
			}
			return st
		},
	)

	if start, ok := s.ProjectStart(); ok {
		end, _ := s.ProjectEnd()
		p.Note("%s to %s, %.1f%% complete", p.date(start), p.date(end), s.OverallCompletion())
	}
}

// CriticalPath writes the CPM table. Run s.CriticalPath first.
func (p *Printer) CriticalPath(s Outline, res schedule.CPMResult) {
	tasks := outline(s)
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		critical := ""
		if t.CPM.Critical {
			critical = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			indent(t.Name, s.Level(t.ID)),
			p.date(t.CPM.EarlyStart),
			p.date(t.CPM.EarlyFinish),
			p.date(t.CPM.LateStart),
			p.date(t.CPM.LateFinish),
			strconv.Itoa(t.CPM.Slack),
			critical,
		})
	}
	p.table(
		[]string{"ID", "Task", "ES", "EF", "LS", "LF", "Slack", "Critical"},
		rows,
		func(row, col int) lipgloss.Style {
			st := p.r.NewStyle()
			if tasks[row].CPM.Critical {
				st = st.Foreground(p.palette.Critical)
			}
			return st
		},
	)

	ids := make([]string, len(res.Critical))
	for i, id := range res.Critical {
		ids[i] = strconv.Itoa(id)
	}
	p.Note("project %s to %s, critical path: %s",
		p.date(res.ProjectStart), p.date(res.ProjectFinish), strings.Join(ids, " → "))
}

// Tracks writes the independent dependency chains of s.
func (p *Printer) Tracks(s *schedule.Store) error {
	tracks, err := s.Tracks()
	if err != nil {
		return fmt.Errorf("computing tracks: %w", err)
	}
	rows := make([][]string, 0, len(tracks))
	for _, tr := range tracks {
		names := make([]string, 0, len(tr.NodeIDs))
		for _, id := range tr.NodeIDs {
			if t, ok := s.GetTask(id); ok {
				names = append(names, fmt.Sprintf("%d %s", id, t.Name))
			}
		}
		rows = append(rows, []string{strconv.Itoa(tr.ID + 1), strconv.Itoa(len(tr.NodeIDs)), strings.Join(names, ", ")})
	}
	p.table([]string{"Track", "Tasks", "Order"}, rows, nil)
	return nil
}

// Waves writes the tasks grouped by dependency depth.
func (p *Printer) Waves(s *schedule.Store) error {
	waves, err := s.Waves()
	if err != nil {
		return fmt.Errorf("computing waves: %w", err)
	}
	rows := make([][]string, 0, len(waves))
	for _, w := range waves {
		ids := make([]string, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			ids[i] = strconv.Itoa(id)
		}
		rows = append(rows, []string{strconv.Itoa(w.Number), strings.Join(ids, " ")})
	}
	p.table([]string{"Wave", "Tasks"}, rows, nil)
	return nil
}

// outline returns the tasks in WBS pre-order.
func outline(s Outline) []schedule.Task {
	var out []schedule.Task
	for _, top := range s.GetTopLevelTasks() {
		out = append(out, top)
		out = append(out, s.GetAllDescendants(top.ID)...)
	}
	return out
}

func predecessorList(deps []schedule.Dependency) string {
	parts := make([]string, 0, len(deps))
	for _, d := range deps {
		part := strconv.Itoa(d.PredecessorID)
		if d.Type != schedule.FinishToStart || d.LagDays != 0 {
			part += d.Type.String()
		}
		if d.LagDays != 0 {
			part += fmt.Sprintf("%+d", d.LagDays)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
