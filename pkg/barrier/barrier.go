// Package barrier provides a busy-wait rendezvous point for a fixed number of
// participant threads.
//
// A blocking primitive (mutex, condition variable) would let the OS scheduler
// park and wake participants at unpredictable times, which distorts
// nanosecond-scale measurement windows. The hot barrier instead spins on an
// atomic counter: wake-up latency is bounded by a single cache-line transfer
// and every waiting core stays busy, so it cannot drop into a lower power
// state while its peers finish.
package barrier

import (
	"fmt"
	"sync/atomic"
)

// HotBarrier synchronizes a fixed number of participants at one checkpoint.
// It is single-use: once broken it stays broken and must not be reused.
type HotBarrier struct {
	breakCount uint64
	current    atomic.Uint64
}

// New returns a hot barrier for the given number of participants.
func New(participants int) *HotBarrier {
	if participants < 1 {
		panic(fmt.Sprintf("hot barrier needs at least one participant, got %d", participants))
	}
	return &HotBarrier{breakCount: uint64(participants)}
}

// Increment records the arrival of one participant. It never blocks.
// Each participant must call it exactly once per barrier.
func (b *HotBarrier) Increment() {
	arrived := b.current.Add(1)
	if arrived > b.breakCount {
		// A participant arrived twice or the barrier was sized wrong. This is
		// a harness bug, not a runtime condition.
		panic(fmt.Sprintf("hot barrier overrun: %d arrivals for %d participants", arrived, b.breakCount))
	}
}

// IsBroken returns true iff every participant has arrived. It never blocks
// and may be called from any goroutine. The atomic load gives the acquire
// semantics the polling loops rely on.
func (b *HotBarrier) IsBroken() bool {
	return b.current.Load() == b.breakCount
}

// Wait increments the arrival count and spins until the barrier breaks.
// Returns the number of spin iterations in case the caller cares.
func (b *HotBarrier) Wait() int64 {
	b.Increment()
	spins := int64(0)
	for !b.IsBroken() {
		spins++
	}
	return spins
}
