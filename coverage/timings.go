package coverage

import (
	"cmp"
	"slices"
	"time"
)

type Timings []Timing

// TimingStats are summary statistics of action invocation durations
type TimingStats struct {
	Mean    time.Duration
	Minimum time.Duration
	Maximum time.Duration
	// P50 is the median duration
	P50   time.Duration
	P90   time.Duration
	Count int
}

// Stats summarises the timings (false if there are no timings)
func (ct Timings) Stats() (TimingStats, bool) {
	if len(ct) == 0 {
		return TimingStats{}, false
	}
	durations := make([]time.Duration, len(ct))
	var total time.Duration
	for i, t := range ct {
		durations[i] = t.Duration
		total += t.Duration
	}
	slices.Sort(durations)
	nearestRank := func(p float64) time.Duration {
		idx := int(p*float64(len(durations))+0.5) - 1
		return durations[max(0, min(idx, len(durations)-1))]
	}
	return TimingStats{
		Mean:    total / time.Duration(len(durations)),
		Minimum: durations[0],
		Maximum: durations[len(durations)-1],
		P50:     nearestRank(0.5),
		P90:     nearestRank(0.9),
		Count:   len(durations),
	}, true
}

// Slowest returns the n slowest timings (slowest first)
func (ct Timings) Slowest(n int) Timings {
	sorted := slices.Clone(ct)
	slices.SortStableFunc(sorted, func(a, b Timing) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
	return sorted[:min(n, len(sorted))]
}
