// Package detect turns a motion-energy series into impact event timestamps.
//
// Selection runs in two stages: a grid-level pass picks local maxima above a
// percentile threshold with a minimum spacing in samples, then a greedy pass
// in true time units enforces the minimum separation in seconds. The grid
// pass alone cannot guarantee the time invariant at a coarse downsample, and
// a single fused pass over-counts closely spaced frames around one impact.
package detect

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// Params are the tunables for event selection.
type Params struct {
	// Percentile of the magnitude distribution used as the peak threshold.
	Percentile float64
	// MinSeparation is the minimum distance in seconds between kept events.
	MinSeparation float64
	// EdgeTrimPct is the fraction of the video duration discarded at each
	// end, removing setup and camera-shake false positives.
	EdgeTrimPct float64
}

// Threshold returns the p-th percentile of mags, linearly interpolated.
// p is given in percent, e.g. 95.
func Threshold(mags []float64, p float64) float64 {
	if len(mags) == 0 {
		return 0
	}
	sorted := make([]float64, len(mags))
	copy(sorted, mags)
	sort.Float64s(sorted)
	return stat.Quantile(p/100, stat.LinInterp, sorted, nil)
}

// GridPeaks returns the indices of local maxima in the series whose magnitude
// is at least threshold and which survive strongest-first suppression of
// neighbours closer than minDistSamples indices. Indices come back in time
// order.
func GridPeaks(s entity.MotionSeries, threshold float64, minDistSamples int) []int {
	mags := s.Magnitudes()
	var candidates []int
	for _, p := range localMaxima(mags) {
		if mags[p] >= threshold {
			candidates = append(candidates, p)
		}
	}
	return selectByDistance(candidates, mags, minDistSamples)
}

// SuppressByTime walks candidate peaks in increasing time order and keeps one
// only if it is at least minSep seconds after the last kept peak. The first
// candidate is always eligible. Earliest-wins: a later, stronger peak inside
// the separation window loses to the one already kept.
func SuppressByTime(s entity.MotionSeries, peaks []int, minSep float64) []entity.Event {
	events := make([]entity.Event, 0, len(peaks))
	last := -minSep
	for _, p := range peaks {
		t := s[p].Time
		if t-last >= minSep {
			events = append(events, entity.Event{Time: t})
			last = t
		}
	}
	return events
}

// TrimEdges drops events inside the first or last trimPct fraction of the
// video. The boundaries themselves are kept.
func TrimEdges(events []entity.Event, duration, trimPct float64) []entity.Event {
	lo := duration * trimPct
	hi := duration * (1 - trimPct)
	out := make([]entity.Event, 0, len(events))
	for _, ev := range events {
		if ev.Time >= lo && ev.Time <= hi {
			out = append(out, ev)
		}
	}
	return out
}

// Impacts runs the full selection over a motion series for a video of the
// given duration. Fewer than two samples yields no events.
func Impacts(s entity.MotionSeries, duration float64, p Params) []entity.Event {
	if len(s) < 2 {
		return nil
	}
	thr := Threshold(s.Magnitudes(), p.Percentile)
	minDist := int(1 / s.Interval())
	if minDist < 1 {
		minDist = 1
	}
	peaks := GridPeaks(s, thr, minDist)
	events := SuppressByTime(s, peaks, p.MinSeparation)
	return TrimEdges(events, duration, p.EdgeTrimPct)
}

// localMaxima finds indices i with x[i-1] < x[i] > x[i+1]. A flat run that
// rises on the left and falls on the right counts once, at its midpoint. The
// first and last samples are never maxima.
func localMaxima(x []float64) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

// selectByDistance keeps peaks strongest-first, discarding any neighbour
// whose index is strictly closer than minDist to a kept peak. Peaks exactly
// minDist apart both survive. Equal magnitudes resolve in favour of the later
// peak.
func selectByDistance(peaks []int, mags []float64, minDist int) []int {
	n := len(peaks)
	if n == 0 {
		return nil
	}
	keep := make([]bool, n)
	order := make([]int, n)
	for i := range order {
		keep[i] = true
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return mags[peaks[order[a]]] < mags[peaks[order[b]]]
	})
	for i := n - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < minDist; k-- {
			keep[k] = false
		}
		for k := j + 1; k < n && peaks[k]-peaks[j] < minDist; k++ {
			keep[k] = false
		}
	}
	out := make([]int, 0, n)
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
