package schedule

import (
	"fmt"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// EVMetrics are the earned value figures for one task or the project.
type EVMetrics struct {
	PV, EV, AC  float64
	BAC         float64
	CV, SV      float64
	CPI, SPI    float64
	EAC, VAC    float64
}

// TaskEVM is one task's earned value row.
type TaskEVM struct {
	TaskID    int
	Name      string
	WBS       string
	IsSummary bool
	EVMetrics
}

// EVMReport holds per-task rows for every baselined task and totals over
// non-summary rows.
type EVMReport struct {
	Baseline   string
	StatusDate time.Time
	Tasks      []TaskEVM
	Total      EVMetrics
}

// EarnedValue measures the plan against the named baseline as of
// statusDate. Budgets and planned value come from the baseline's dates;
// earned value and actual cost from current dates and completion. Costs use
// the task's current assignments at their billing rates.
func (s *Store) EarnedValue(baselineName string, statusDate time.Time) (EVMReport, error) {
	i := s.baselineIndex(baselineName)
	if i < 0 {
		return EVMReport{}, fmt.Errorf("%w: %q", ErrBaselineNotFound, baselineName)
	}
	b := s.baselines[i]
	status := calendar.Truncate(statusDate)
	rep := EVMReport{Baseline: b.Name, StatusDate: status}

	var total EVMetrics
	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		snap, ok := b.Snapshot(id)
		if !ok {
			continue
		}
		rate := s.blendedRate(t)
		budgetHours := s.cal.WorkingHours(snap.Start, snap.End, 0)

		var m EVMetrics
		m.BAC = budgetHours * rate
		switch {
		case !status.After(snap.Start):
		case !status.Before(snap.End):
			m.PV = m.BAC
		case budgetHours > 0:
			m.PV = s.cal.WorkingHours(snap.Start, status, 0) / budgetHours * m.BAC
		default:
			m.PV = m.BAC
		}
		m.EV = float64(t.PercentComplete) / 100 * m.BAC
		if status.After(t.Start) {
			until, _ := earlier(status, true, t.End)
			if t.PercentComplete >= 100 {
				until = t.End
			}
			m.AC = max(0, s.cal.WorkingHours(t.Start, until, 0)*rate)
		}
		m.derive()

		rep.Tasks = append(rep.Tasks, TaskEVM{TaskID: id, Name: t.Name, WBS: t.WBS, IsSummary: t.IsSummary, EVMetrics: m})
		if !t.IsSummary {
			total.PV += m.PV
			total.EV += m.EV
			total.AC += m.AC
			total.BAC += m.BAC
		}
	}
	total.derive()
	rep.Total = total
	return rep, nil
}

// blendedRate is the sum of allocation-weighted billing rates of t's
// assigned resources. Unknown resources contribute nothing.
func (s *Store) blendedRate(t *Task) float64 {
	var rate float64
	for _, a := range t.Resources {
		if r, ok := s.resources[a.Name]; ok {
			rate += a.Allocation / 100 * r.BillingRate
		}
	}
	return rate
}

// derive fills variances, indices, and forecasts from PV, EV, AC, and BAC.
func (m *EVMetrics) derive() {
	m.CV = m.EV - m.AC
	m.SV = m.EV - m.PV
	m.CPI, m.SPI = 1, 1
	if m.AC > 0 {
		m.CPI = m.EV / m.AC
	}
	if m.PV > 0 {
		m.SPI = m.EV / m.PV
	}
	m.EAC = m.BAC
	if m.CPI > 0 {
		m.EAC = m.BAC / m.CPI
	}
	m.VAC = m.BAC - m.EAC
}
