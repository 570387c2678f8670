package runner

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/freqbench/freqbench/pkg/barrier"
	"github.com/freqbench/freqbench/pkg/msr"
	"github.com/freqbench/freqbench/pkg/overlap"
	"github.com/freqbench/freqbench/pkg/stats"
	"github.com/freqbench/freqbench/pkg/tsc"
)

// measurement runs the marginal-cost timing protocol for one thread. All
// counter reads go through now so tests can substitute a synthetic clock.
type measurement struct {
	run      func(iters uint64)
	iters    uint64
	preTrial func()
	timer    *msr.PerfTimer
	stop     *barrier.HotBarrier
	now      func() uint64
	clock    *tsc.Clock
}

type measured struct {
	mops  float64
	outer overlap.Interval
	inner overlap.Interval
}

// execute runs warmupPasses+1 passes of tries trials each and keeps the last
// pass. Each trial times the workload at N and 2N iterations and records the
// difference of the two elapsed times, cancelling the fixed per-call overhead.
// After the kept pass the thread signals the stop barrier and keeps executing
// the workload until every sibling has signalled too, so that no thread's
// samples are taken while a finished sibling's core sits idle.
func (m *measurement) execute() (measured, error) {
	samples := make([]int64, tries)

	var res measured
	res.outer.Start = m.now()
	for pass := 0; pass <= warmupPasses; pass++ {
		res.inner.Start = m.now()
		if err := m.timer.Start(); err != nil {
			// A failed register read must not abort the protocol: siblings
			// spin on the shared stop barrier until every thread arrives.
			logrus.Warnf("disabling frequency sampling: %v", err)
			m.timer.Disable()
		}
		for trial := 0; trial < tries; trial++ {
			if m.preTrial != nil {
				m.preTrial()
			}
			t0 := m.now()
			m.run(m.iters)
			t1 := m.now()
			m.run(2 * m.iters)
			t2 := m.now()
			// Signed: scheduling noise can make the half-length call the
			// slower one on rare trials.
			samples[trial] = int64(t2-t1) - int64(t1-t0)
		}
		if err := m.timer.Stop(); err != nil {
			logrus.Warnf("disabling frequency sampling: %v", err)
			m.timer.Disable()
		}
		res.inner.End = m.now()
	}

	m.stop.Increment()
	for !m.stop.IsBroken() {
		m.run(m.iters)
	}
	res.outer.End = m.now()

	mops, err := m.throughput(samples)
	if err != nil {
		return measured{}, err
	}
	res.mops = mops
	return res, nil
}

// throughput reduces the kept pass's tick samples to millions of operations
// per second via the median.
func (m *measurement) throughput(samples []int64) (float64, error) {
	nanos := make([]float64, len(samples))
	for i, ticks := range samples {
		nanos[i] = float64(ticks) / m.clock.TicksPerNanosecond()
	}

	desc, err := stats.Describe(nanos)
	if err != nil {
		return 0, err
	}
	logrus.Debugf("marginal cost ns: min %.1f median %.1f max %.1f stddev %.1f",
		desc.Min, desc.Median, desc.Max, desc.StdDev)

	if desc.Median <= 0 {
		return 0, errors.Errorf("median marginal cost is %.1f ns; iteration count %d is too small to resolve", desc.Median, m.iters)
	}
	// iters per nanosecond is Gops; scale to Mops.
	return 1000 * float64(m.iters) / desc.Median, nil
}

// warm exercises the workload in small chunks until the wall-time budget has
// elapsed, bringing the core out of any idle state before the start barrier.
// Returns the number of chunks executed.
func warm(run func(iters uint64), budget time.Duration, now func() uint64, clock *tsc.Clock) int64 {
	if budget <= 0 {
		return 0
	}
	budgetTicks := uint64(float64(budget.Nanoseconds()) * clock.TicksPerNanosecond())
	begin := now()
	chunks := int64(0)
	for now()-begin < budgetTicks {
		run(warmupChunk)
		chunks++
	}
	return chunks
}

// tscNow adapts the package-level counter read to the injection point.
func tscNow() uint64 {
	return tsc.Now()
}
