package report

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planiflow/internal/baselinestore"
	"github.com/papapumpkin/planiflow/internal/schedule"
)

// Allocation writes per-resource hours and cost, followed by one warning per
// over-allocated day.
func (p *Printer) Allocation(allocs []schedule.Allocation, overs []schedule.Overallocation) {
	rows := make([][]string, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, []string{
			a.Resource,
			strconv.Itoa(a.TasksAssigned),
			fmt.Sprintf("%.1f", a.TotalHours),
			fmt.Sprintf("%.1f", a.MaxHoursPerDay),
			money(a.BillingRate),
			money(a.TotalCost),
		})
	}
	p.table([]string{"Resource", "Tasks", "Hours", "Max/day", "Rate", "Cost"}, rows, nil)

	warn := p.r.NewStyle().Foreground(p.palette.Overdue)
	for _, o := range overs {
		fmt.Fprintln(p.w, warn.Render(fmt.Sprintf("! %s over-allocated on %s: %.1fh of %.1fh",
			o.Resource, p.date(o.Date), o.Hours, o.Max)))
	}
}

// Costs writes the cost of each period, broken down by resource.
func (p *Printer) Costs(periods []schedule.CostPeriod, resources []schedule.Resource) {
	headers := make([]string, 0, len(resources)+2)
	headers = append(headers, "Period")
	for _, r := range resources {
		headers = append(headers, r.Name)
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(periods))
	for _, cp := range periods {
		row := make([]string, 0, len(headers))
		row = append(row, cp.Label)
		for _, v := range cp.ByResource {
			row = append(row, money(v))
		}
		rows = append(rows, append(row, money(cp.Total)))
	}
	p.table(headers, rows, nil)
}

// BaselineList writes the stored baselines of one project.
func (p *Printer) BaselineList(entries []baselinestore.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, p.date(e.Created), strconv.Itoa(e.TaskCount), e.ID})
	}
	p.table([]string{"Name", "Created", "Tasks", "ID"}, rows, nil)
}

// Comparison writes the variance of every task against a baseline.
func (p *Printer) Comparison(c schedule.Comparison) {
	rows := make([][]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		rows = append(rows, []string{
			strconv.Itoa(t.TaskID),
			t.Name,
			p.date(t.Baseline.Start),
			p.date(t.Current.Start),
			fmt.Sprintf("%+d", t.StartVariance),
			p.date(t.Baseline.End),
			p.date(t.Current.End),
			fmt.Sprintf("%+d", t.EndVariance),
			string(t.EndStatus),
		})
	}
	p.table(
		[]string{"ID", "Task", "Base start", "Start", "Δ", "Base finish", "Finish", "Δ", "Status"},
		rows,
		func(row, col int) lipgloss.Style {
			st := p.r.NewStyle()
			if col != 8 {
				return st
			}
			switch c.Tasks[row].EndStatus {
			case schedule.Late, schedule.Deleted:
				return st.Foreground(p.palette.Overdue)
			case schedule.Early:
				return st.Foreground(p.palette.InProgress)
			}
			return st
		},
	)
	sum := c.Summary
	p.Note("%d tasks: %d on track, %d late, %d early, %d new, %d deleted; avg duration %+.1fd, avg completion %+.1f%%",
		sum.Total, sum.OnTrack, sum.Late, sum.Early, sum.New, sum.Deleted,
		sum.AvgDurationVariance, sum.AvgCompletionVariance)
}

// EarnedValue writes the EVM table with a totals row.
func (p *Printer) EarnedValue(rep schedule.EVMReport) {
	rows := make([][]string, 0, len(rep.Tasks)+1)
	for _, t := range rep.Tasks {
		rows = append(rows, evmRow(strconv.Itoa(t.TaskID), t.Name, t.EVMetrics))
	}
	rows = append(rows, evmRow("", "Total", rep.Total))

	last := len(rows) - 1
	p.table(
		[]string{"ID", "Task", "PV", "EV", "AC", "BAC", "CV", "SV", "CPI", "SPI", "EAC", "VAC"},
		rows,
		func(row, col int) lipgloss.Style {
			st := p.r.NewStyle()
			if row == last {
				return st.Bold(true)
			}
			if rep.Tasks[row].IsSummary {
				st = st.Foreground(colorMuted)
			}
			if (col == 8 || col == 9) && performanceIndex(rep.Tasks[row].EVMetrics, col) < 1 {
				st = st.Foreground(p.palette.Overdue)
			}
			return st
		},
	)
	p.Note("baseline %q as of %s", rep.Baseline, p.date(rep.StatusDate))
}

func evmRow(id, name string, m schedule.EVMetrics) []string {
	return []string{
		id, name,
		money(m.PV), money(m.EV), money(m.AC), money(m.BAC),
		money(m.CV), money(m.SV),
		fmt.Sprintf("%.2f", m.CPI), fmt.Sprintf("%.2f", m.SPI),
		money(m.EAC), money(m.VAC),
	}
}

// performanceIndex returns CPI for column 8 and SPI for column 9.
func performanceIndex(m schedule.EVMetrics, col int) float64 {
	if col == 8 {
		return m.CPI
	}
	return m.SPI
}

// Simulation writes the finish date distribution of a Monte Carlo run and
// every task's criticality index, highest first.
func (p *Printer) Simulation(s *schedule.Store, sim schedule.Simulation) {
	p.table([]string{"Measure", "Finish"}, [][]string{
		{"Min", p.date(sim.Min)},
		{"P50", p.date(sim.P50)},
		{"P80", p.date(sim.P80)},
		{"P90", p.date(sim.P90)},
		{"Max", p.date(sim.Max)},
		{"Mean", p.date(sim.Mean)},
	}, nil)
	p.Note("%d iterations, std dev %.1f days", sim.Iterations, sim.StdDevDays)

	ids := make([]int, 0, len(sim.Criticality))
	for id := range sim.Criticality {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b int) int {
		if c := cmp.Compare(sim.Criticality[b], sim.Criticality[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		name := ""
		if t, ok := s.GetTask(id); ok {
			name = t.Name
		}
		rows = append(rows, []string{strconv.Itoa(id), name, fmt.Sprintf("%.0f%%", 100*sim.Criticality[id])})
	}
	p.table([]string{"ID", "Task", "Critical"}, rows, func(row, col int) lipgloss.Style {
		st := p.r.NewStyle()
		if col == 2 && sim.Criticality[ids[row]] >= 1 {
			st = st.Foreground(p.palette.Critical)
		}
		return st
	})
}
