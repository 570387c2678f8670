package runner

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/freqbench/freqbench/pkg/barrier"
	"github.com/freqbench/freqbench/pkg/isolation"
	"github.com/freqbench/freqbench/pkg/msr"
	"github.com/freqbench/freqbench/pkg/workloads"
)

// Orchestrator runs specs sequentially, one spec's threads concurrently.
type Orchestrator struct {
	cfg Config
}

// NewOrchestrator returns an orchestrator for a validated config.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Run executes every spec in order. Results accumulate per thread count and
// emit is called with the accumulated group whenever the next spec uses a
// different thread count, and once more at the end. All specs are validated
// up front: a spec that cannot run aborts the whole run before any thread is
// spawned.
func (o *Orchestrator) Run(specs []Spec, emit func([]SpecResult)) error {
	for _, spec := range specs {
		if err := o.checkSpec(&spec); err != nil {
			return err
		}
	}

	group := []SpecResult{}
	for _, spec := range specs {
		if len(group) > 0 && group[0].Spec.Count() != spec.Count() {
			emit(group)
			group = nil
		}

		logrus.Infof("running spec %s on %d threads", spec.String(), spec.Count())
		result, err := o.runSpec(spec)
		if err != nil {
			return err
		}
		group = append(group, result)
	}
	if len(group) > 0 {
		emit(group)
	}
	return nil
}

func (o *Orchestrator) checkSpec(spec *Spec) error {
	if spec.Count() < 1 {
		return errors.Errorf("spec %q has no threads", spec.Name)
	}
	if available := o.usableCPUs(); spec.Count() > available {
		return errors.Errorf("spec %q wants %d threads but only %d CPUs are available",
			spec.Name, spec.Count(), available)
	}
	return nil
}

// usableCPUs bounds the thread count of any spec, pinned or not: more
// participants than CPUs cannot all be simultaneously hot, which breaks the
// contention the protocol measures. Without an explicit CPU list an unpinned
// run is bounded by the machine.
func (o *Orchestrator) usableCPUs() int {
	if o.cfg.Pin || len(o.cfg.CPUIDs) > 0 {
		return len(o.cfg.CPUIDs)
	}
	return runtime.NumCPU()
}

// runSpec spawns one goroutine per spec entry and joins them. The start
// barrier aligns the first trial of every thread; the stop barrier keeps
// finished threads busy until the last one finishes sampling.
func (o *Orchestrator) runSpec(spec Spec) (SpecResult, error) {
	count := spec.Count()
	start := barrier.New(count)
	stop := barrier.New(count)

	results := make([]ThreadResult, count)
	errs := make([]error, count)

	var wg sync.WaitGroup
	for i, w := range spec.Threads {
		wg.Add(1)
		go func(threadID int, w workloads.Workload) {
			defer wg.Done()
			results[threadID], errs[threadID] = o.runThread(threadID, w, start, stop)
		}(i, w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return SpecResult{}, errors.Wrapf(err, "spec %q failed", spec.Name)
		}
	}
	return SpecResult{Spec: spec, Threads: results}, nil
}

func (o *Orchestrator) runThread(threadID int, w workloads.Workload, start, stop *barrier.HotBarrier) (ThreadResult, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cpuID := -1
	if o.cfg.Pin {
		cpuID = o.cfg.CPUIDs[threadID]
		if err := isolation.PinToCPU(cpuID); err != nil {
			// Degraded accuracy, not a protocol failure.
			logrus.Warnf("[%2d] %v, continuing unpinned", threadID, err)
			cpuID = -1
		}
	}

	chunks := warm(w.Run, o.cfg.Warmup, tscNow, o.cfg.Clock)
	logrus.Debugf("[%2d] warmed up over %d chunks", threadID, chunks)

	if o.cfg.Barrier {
		spins := start.Wait()
		logrus.Debugf("[%2d] waited %d spins at the start barrier", threadID, spins)
	} else {
		start.Increment()
	}

	var preTrial func()
	if o.cfg.DirtyUpper {
		preTrial = workloads.DirtyUpper
	}

	m := &measurement{
		run:      w.Run,
		iters:    o.cfg.Iterations,
		preTrial: preTrial,
		timer:    msr.NewPerfTimer(o.cfg.Registers, cpuID, o.cfg.UseAperf && cpuID >= 0, tscNow),
		stop:     stop,
		now:      tscNow,
		clock:    o.cfg.Clock,
	}
	got, err := m.execute()
	if err != nil {
		return ThreadResult{}, errors.Wrapf(err, "thread %d running %s", threadID, w.ID)
	}

	return ThreadResult{
		ThreadID:   threadID,
		CPUID:      cpuID,
		WorkloadID: w.ID,
		Mops:       got.mops,
		Outer:      got.outer,
		Inner:      got.inner,
		AMRatio:    m.timer.AMRatio(),
		MTRatio:    m.timer.MTRatio(),
	}, nil
}
