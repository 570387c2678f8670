package runner

import (
	"github.com/freqbench/freqbench/pkg/overlap"
)

// ThreadResult is one thread's outcome for one spec.
type ThreadResult struct {
	// ThreadID is the thread's index within the spec, CPUID the logical CPU
	// it was pinned to (or -1 when pinning was off).
	ThreadID int
	CPUID    int

	WorkloadID string

	// Mops is the throughput in millions of operations per second, derived
	// from the median marginal cost of the kept pass.
	Mops float64

	// Outer spans every pass of the protocol including the stop-barrier
	// drain; Inner spans only the kept pass's trials. Both are in counter
	// ticks.
	Outer overlap.Interval
	Inner overlap.Interval

	// AMRatio and MTRatio come from the APERF/MPERF pair sampled around the
	// kept pass. Zero when register sampling was off.
	AMRatio float64
	MTRatio float64
}

// SpecResult aggregates the per-thread results of one spec.
type SpecResult struct {
	Spec    Spec
	Threads []ThreadResult
}

func (r *SpecResult) outerIntervals() []overlap.Interval {
	out := make([]overlap.Interval, 0, len(r.Threads))
	for _, t := range r.Threads {
		out = append(out, t.Outer)
	}
	return out
}

func (r *SpecResult) innerIntervals() []overlap.Interval {
	out := make([]overlap.Interval, 0, len(r.Threads))
	for _, t := range r.Threads {
		out = append(out, t.Inner)
	}
	return out
}

// OuterOverlap is the pairwise overlap ratio of the threads' whole protocol
// windows.
func (r *SpecResult) OuterOverlap() float64 {
	return overlap.ConcRatio(r.outerIntervals())
}

// InnerOverlap is the pairwise overlap ratio of the threads' kept trial
// windows alone.
func (r *SpecResult) InnerOverlap() float64 {
	return overlap.ConcRatio(r.innerIntervals())
}

// NestedOverlap weighs each thread's kept trial window by how many sibling
// protocol windows were active over it. This is the trust indicator reported
// alongside throughput: near 1.0 every sample was taken under full
// contention, near 0.0 the threads mostly measured alone.
func (r *SpecResult) NestedOverlap() float64 {
	return overlap.NConcRatio(r.outerIntervals(), r.innerIntervals())
}
