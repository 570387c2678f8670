// Package overlap quantifies how much a set of recorded time intervals
// actually coincided. The ratios it produces are a trust diagnostic for
// concurrent measurements: if the timed windows of sibling threads barely
// overlapped, their throughput numbers were not taken under real contention
// and should be treated skeptically.
package overlap

import (
	"math"
	"sort"
)

// Interval is an ordered pair of free-running-counter timestamps.
// Invariant: Start <= End.
type Interval struct {
	Start uint64
	End   uint64
}

// Duration returns the length of the interval in counter ticks.
func (i Interval) Duration() uint64 {
	return i.End - i.Start
}

type eventKind int

const (
	outerStart eventKind = iota
	outerStop
	innerStart
	innerStop
)

type event struct {
	stamp uint64
	kind  eventKind
}

func sortEvents(events []event) {
	sort.Slice(events, func(l, r int) bool { return events[l].stamp < events[r].stamp })
}

// Concurrency sweeps the intervals' start/stop events and returns the sum of
// all interval durations together with the total wall-clock time during which
// at least one interval was active (the union duration). Disjoint intervals
// yield equal sums; full overlap of N identical intervals yields a duration
// sum N times the union.
func Concurrency(intervals []Interval) (sumDurations, sumUnion uint64) {
	if len(intervals) == 0 {
		return 0, 0
	}

	events := make([]event, 0, 2*len(intervals))
	for _, iv := range intervals {
		sumDurations += iv.Duration()
		events = append(events, event{iv.Start, innerStart}, event{iv.End, innerStop})
	}
	sortEvents(events)

	active := 0
	lastStamp := events[0].stamp
	for _, e := range events {
		if active > 0 {
			sumUnion += e.stamp - lastStamp
		}
		if e.kind == innerStart {
			active++
		} else {
			active--
		}
		lastStamp = e.stamp
	}

	return sumDurations, sumUnion
}

// ConcRatio returns the overlap of the intervals normalized to [0, 1]:
// 0 means all intervals were disjoint, 1 means all N overlapped completely.
// The raw duration/union quotient ranges over [1, N] and is remapped linearly.
// A single interval is defined as ratio 1.0 by convention since the remap is
// undefined at N == 1; zero intervals yield NaN.
func ConcRatio(intervals []Interval) float64 {
	n := len(intervals)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return 1.0
	}
	sumDurations, sumUnion := Concurrency(intervals)
	raw := float64(sumDurations) / float64(sumUnion)
	return remap(raw, 1.0, float64(n), 0.0, 1.0)
}

// NestedConcurrency evaluates the inner intervals against a separate set of
// outer intervals. It returns the sum of each inner sub-period weighted by the
// number of concurrently active outer intervals, together with the plain sum
// of inner durations. The intuition: each thread's timed (inner) window should
// fall inside a period when every sibling's whole (outer) window was active;
// inner time spent while few outer windows were active contributes little
// weight.
func NestedConcurrency(outer, inner []Interval) (weightedSum, innerTotal uint64) {
	if len(inner) == 0 {
		return 0, 0
	}

	events := make([]event, 0, 2*(len(outer)+len(inner)))
	for _, iv := range outer {
		events = append(events, event{iv.Start, outerStart}, event{iv.End, outerStop})
	}
	for _, iv := range inner {
		innerTotal += iv.Duration()
		events = append(events, event{iv.Start, innerStart}, event{iv.End, innerStop})
	}
	sortEvents(events)

	// Counters are signed: events with equal stamps sort in arbitrary order,
	// so a zero-length interval's stop may be visited before its start. Those
	// transients never contribute weight because their elapsed time is zero.
	oCount, iCount := int64(0), int64(0)
	lastStamp := events[0].stamp
	for _, e := range events {
		if elapsed := e.stamp - lastStamp; elapsed > 0 {
			weightedSum += uint64(oCount) * uint64(iCount) * elapsed
		}
		switch e.kind {
		case outerStart:
			oCount++
		case outerStop:
			oCount--
		case innerStart:
			iCount++
		case innerStop:
			iCount--
		}
		lastStamp = e.stamp
	}

	return weightedSum, innerTotal
}

// NConcRatio normalizes NestedConcurrency the same way ConcRatio does, over
// the theoretical raw range [1, len(outer)]. With no outer intervals it
// returns 0; with a single outer interval the raw quotient is returned
// unremapped.
func NConcRatio(outer, inner []Interval) float64 {
	oCount := len(outer)
	if oCount == 0 {
		return 0.0
	}
	weightedSum, innerTotal := NestedConcurrency(outer, inner)
	raw := float64(weightedSum) / float64(innerTotal)
	if oCount == 1 {
		return raw
	}
	return remap(raw, 1.0, float64(oCount), 0.0, 1.0)
}

// remap linearly maps value from the input range onto the output range.
func remap(value, inStart, inEnd, outStart, outEnd float64) float64 {
	return outStart + (outEnd-outStart)/(inEnd-inStart)*(value-inStart)
}
