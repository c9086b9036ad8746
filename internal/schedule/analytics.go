package schedule

import (
	"sort"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// ProjectStart returns the earliest start among top-level tasks.
func (s *Store) ProjectStart() (time.Time, bool) {
	var start time.Time
	var ok bool
	for _, id := range s.children[NoParent] {
		start, ok = earlier(start, ok, s.tasks[id].Start)
	}
	return start, ok
}

// ProjectEnd returns the latest end among top-level tasks.
func (s *Store) ProjectEnd() (time.Time, bool) {
	var end time.Time
	var ok bool
	for _, id := range s.children[NoParent] {
		end, ok = later(end, ok, s.tasks[id].End)
	}
	return end, ok
}

// OverallCompletion is the mean completion of all tasks weighted by
// calendar duration in days. Milestones carry no weight.
func (s *Store) OverallCompletion() float64 {
	var weighted, total float64
	for _, t := range s.tasks {
		if t.IsMilestone {
			continue
		}
		d := t.End.Sub(t.Start).Hours()/24 + 1
		weighted += d * float64(t.PercentComplete)
		total += d
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Allocation is one resource's planned effort across the project.
type Allocation struct {
	Resource       string
	TotalHours     float64
	MaxHoursPerDay float64
	BillingRate    float64
	TotalCost      float64
	TasksAssigned  int
}

// ResourceAllocation sums assigned hours per resource, honoring each
// resource's exceptions and scaling by allocation. Summaries and milestones
// are skipped. Results follow resource order.
func (s *Store) ResourceAllocation() []Allocation {
	index := make(map[string]int, len(s.resourceOrder))
	out := make([]Allocation, len(s.resourceOrder))
	exceptions := make(map[string]*calendar.Exceptions, len(s.resourceOrder))
	for i, name := range s.resourceOrder {
		r := s.resources[name]
		index[name] = i
		out[i] = Allocation{Resource: name, MaxHoursPerDay: r.MaxHoursPerDay, BillingRate: r.BillingRate}
		exceptions[name] = s.cal.ParseExceptions(r.Exceptions)
	}

	for _, id := range s.taskIDs() {
		t := s.tasks[id]
		if t.IsSummary || t.IsMilestone {
			continue
		}
		for _, a := range t.Resources {
			i, ok := index[a.Name]
			if !ok {
				continue
			}
			hours := s.cal.WorkingHoursFor(t.Start, t.End, 0, exceptions[a.Name])
			out[i].TotalHours += hours * a.Allocation / 100
			out[i].TasksAssigned++
		}
	}
	for i := range out {
		out[i].TotalCost = out[i].TotalHours * out[i].BillingRate
	}
	return out
}

// Overallocation is a day on which a resource is booked beyond its limit.
type Overallocation struct {
	Resource string
	Date     time.Time
	Hours    float64
	Max      float64
}

// Overallocations reports every resource-day booked above MaxHoursPerDay.
// Each assignment books the calendar's hours per day scaled by allocation
// on days that are working for both the project and the resource. Results
// are sorted by resource order, then date.
func (s *Store) Overallocations() []Overallocation {
	type key struct {
		name string
		day  time.Time
	}
	booked := make(map[key]float64)
	exceptions := make(map[string]*calendar.Exceptions, len(s.resourceOrder))
	for _, name := range s.resourceOrder {
		exceptions[name] = s.cal.ParseExceptions(s.resources[name].Exceptions)
	}

	for _, t := range s.tasks {
		if t.IsSummary || t.IsMilestone {
			continue
		}
		for day := t.Start; !day.After(t.End); day = day.AddDate(0, 0, 1) {
			for _, a := range t.Resources {
				ex, ok := exceptions[a.Name]
				if !ok || !s.cal.IsWorkingDayFor(day, ex) {
					continue
				}
				booked[key{a.Name, day}] += s.cal.HoursPerDay() * a.Allocation / 100
			}
		}
	}

	order := make(map[string]int, len(s.resourceOrder))
	for i, name := range s.resourceOrder {
		order[name] = i
	}
	var out []Overallocation
	for k, hours := range booked {
		if limit := s.resources[k.name].MaxHoursPerDay; hours > limit {
			out = append(out, Overallocation{Resource: k.name, Date: k.day, Hours: hours, Max: limit})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return order[out[i].Resource] < order[out[j].Resource]
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// CostPeriod is one column of a cost breakdown.
type CostPeriod struct {
	Label      string
	Start, End time.Time
	Total      float64
	// ByResource follows resource order.
	ByResource []float64
}

// CostBreakdown spreads assignment cost over the project span: one period
// per day for spans shorter than 30 calendar days, else one per month.
func (s *Store) CostBreakdown() []CostPeriod {
	start, ok := s.ProjectStart()
	if !ok {
		return nil
	}
	end, _ := s.ProjectEnd()

	var periods []CostPeriod
	if end.Sub(start) < 30*24*time.Hour {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			periods = append(periods, CostPeriod{Label: d.Format("02-Jan"), Start: d, End: d})
		}
	} else {
		for m := calendar.Date(start.Year(), start.Month(), 1); !m.After(end); m = m.AddDate(0, 1, 0) {
			pe := m.AddDate(0, 1, -1)
			if pe.After(end) {
				pe = end
			}
			periods = append(periods, CostPeriod{Label: m.Format("Jan-2006"), Start: m, End: pe})
		}
	}

	exceptions := make(map[string]*calendar.Exceptions, len(s.resourceOrder))
	index := make(map[string]int, len(s.resourceOrder))
	for i, name := range s.resourceOrder {
		exceptions[name] = s.cal.ParseExceptions(s.resources[name].Exceptions)
		index[name] = i
	}
	for p := range periods {
		period := &periods[p]
		period.ByResource = make([]float64, len(s.resourceOrder))
		for _, t := range s.tasks {
			if t.IsSummary || t.IsMilestone {
				continue
			}
			from, _ := later(t.Start, true, period.Start)
			to, _ := earlier(t.End, true, period.End)
			if from.After(to) {
				continue
			}
			for _, a := range t.Resources {
				i, ok := index[a.Name]
				if !ok {
					continue
				}
				hours := s.cal.WorkingHoursFor(from, to, 0, exceptions[a.Name]) * a.Allocation / 100
				cost := hours * s.resources[a.Name].BillingRate
				period.ByResource[i] += cost
				period.Total += cost
			}
		}
	}
	return periods
}
