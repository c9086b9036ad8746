package schedule

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/papapumpkin/planiflow/internal/calendar"
)

// Bounds of the triangular duration draw, as fractions of a task's
// planned duration. The planned duration is the mode.
const (
	optimisticFactor  = 0.75
	pessimisticFactor = 1.25
	minDrawDays       = 0.1
)

// DefaultIterations is the iteration count the CLI uses.
const DefaultIterations = 1000

// Simulation summarizes a Monte Carlo run of the forward pass.
type Simulation struct {
	Iterations int
	Min, Max   time.Time
	Mean       time.Time
	P50        time.Time
	P80        time.Time
	P90        time.Time
	// StdDevDays is the sample standard deviation of the finish, in
	// calendar days.
	StdDevDays float64
	// Criticality is the share of iterations in which a task lay on the
	// chain driving the project finish. Tasks never on it are absent.
	Criticality map[int]float64
}

// simSpan is one task's dates in a single iteration.
type simSpan struct {
	start, finish time.Time
}

// Simulate runs iterations forward passes with every leaf duration drawn
// from a triangular distribution around its planned length, and reports the
// distribution of the project finish. The stored schedule is not modified.
// A nil rng is seeded from the store's clock.
func (s *Store) Simulate(iterations int, rng *rand.Rand) (Simulation, error) {
	if iterations <= 0 {
		return Simulation{}, fmt.Errorf("%w: %d", ErrNoIterations, iterations)
	}
	if len(s.tasks) == 0 {
		return Simulation{}, ErrNoTasks
	}
	order, err := s.scheduleGraph(nil).TopologicalSort()
	if err != nil {
		return Simulation{}, fmt.Errorf("simulate: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(s.now().UnixNano()), 0))
	}

	planned := make(map[int]int, len(order))
	for _, id := range order {
		planned[id] = s.duration(s.tasks[id])
	}

	dates := make(map[int]simSpan, len(order))
	drivers := make(map[int]int, len(order))
	early := func(id int) (time.Time, time.Time, bool) {
		d, ok := dates[id]
		return d.start, d.finish, ok
	}

	finishes := make([]time.Time, 0, iterations)
	hits := make(map[int]int)
	for range iterations {
		clear(dates)
		clear(drivers)
		var finish time.Time
		var has bool
		for _, id := range order {
			t := s.tasks[id]
			if t.IsSummary {
				dates[id], drivers[id] = s.childSpan(id, dates)
				continue
			}
			dur := drawDuration(rng, planned[id])
			start, driver := s.earlyStart(t, dur, early)
			d := simSpan{start: start, finish: s.finishFrom(t, start, dur)}
			dates[id], drivers[id] = d, driver
			finish, has = later(finish, has, d.finish)
		}
		finishes = append(finishes, finish)

		onPath := make(map[int]bool)
		for _, id := range order {
			if s.tasks[id].IsSummary || !dates[id].finish.Equal(finish) {
				continue
			}
			for cur := id; cur != NoParent && !onPath[cur]; cur = drivers[cur] {
				onPath[cur] = true
			}
		}
		for id := range onPath {
			hits[id]++
		}
	}

	sim := summarize(finishes)
	sim.Criticality = make(map[int]float64, len(hits))
	for id, n := range hits {
		sim.Criticality[id] = float64(n) / float64(iterations)
	}
	s.logger.Debug("simulation finished", "iterations", iterations, "p50", sim.P50, "p90", sim.P90)
	return sim, nil
}

// childSpan is a summary's span over its children in one iteration, and
// the child that finishes last.
func (s *Store) childSpan(id int, dates map[int]simSpan) (simSpan, int) {
	var span simSpan
	last := NoParent
	for _, kid := range s.children[id] {
		d, ok := dates[kid]
		if !ok {
			continue
		}
		if last == NoParent {
			span, last = d, kid
			continue
		}
		span.start, _ = earlier(span.start, true, d.start)
		if d.finish.After(span.finish) {
			span.finish, last = d.finish, kid
		}
	}
	return span, last
}

// drawDuration samples a working-day length for a task planned at days.
// Milestones stay at zero; any other task lasts at least one day.
func drawDuration(rng *rand.Rand, days int) int {
	if days <= 0 {
		return 0
	}
	mode := float64(days)
	low := max(minDrawDays, mode*optimisticFactor)
	high := max(low, mode*pessimisticFactor)
	return max(1, int(math.Round(triangular(rng, low, mode, high))))
}

// triangular draws from a triangular distribution by inverting its CDF.
func triangular(rng *rand.Rand, low, mode, high float64) float64 {
	if high <= low {
		return low
	}
	u := rng.Float64()
	if c := (mode - low) / (high - low); u < c {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// summarize computes the finish date statistics of a run.
func summarize(finishes []time.Time) Simulation {
	sorted := slices.Clone(finishes)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	n := len(sorted)
	pick := func(p float64) time.Time { return sorted[min(int(p*float64(n)), n-1)] }

	var sum float64
	for _, f := range sorted {
		sum += float64(f.Unix())
	}
	mean := sum / float64(n)
	var sq float64
	for _, f := range sorted {
		d := float64(f.Unix()) - mean
		sq += d * d
	}
	var stddev float64
	if n > 1 {
		stddev = math.Sqrt(sq/float64(n-1)) / (24 * 60 * 60)
	}

	return Simulation{
		Iterations: n,
		Min:        sorted[0],
		Max:        sorted[n-1],
		Mean:       calendar.Truncate(time.Unix(int64(math.Round(mean)), 0).UTC()),
		P50:        pick(0.50),
		P80:        pick(0.80),
		P90:        pick(0.90),
		StdDevDays: stddev,
	}
}
