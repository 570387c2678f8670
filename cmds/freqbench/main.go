package main

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/freqbench/freqbench/pkg/conf"
	"github.com/freqbench/freqbench/pkg/cpu"
	"github.com/freqbench/freqbench/pkg/msr"
	"github.com/freqbench/freqbench/pkg/report"
	"github.com/freqbench/freqbench/pkg/runner"
	"github.com/freqbench/freqbench/pkg/topo"
	"github.com/freqbench/freqbench/pkg/tsc"
	"github.com/freqbench/freqbench/pkg/utils/errutil"
	"github.com/freqbench/freqbench/pkg/utils/uuid"
	"github.com/freqbench/freqbench/pkg/workloads"
)

var (
	appName = os.Args[0]

	listFlag = conf.NewBoolFlag("list", "List the workload catalog with availability and exit.", false)
	specFlag = conf.NewStringFlag("spec", "Run exactly one specification string of the form id[/count],... instead of the default sweep.", "")
	testFlag = conf.NewSliceFlag("test", "Restrict the default sweep to the named workloads (comma separated, repeatable).")

	itersFlag      = conf.NewIntFlag("iters", "Base iteration count per trial. Must be a positive multiple of 100.", 100000)
	minThreadsFlag = conf.NewIntFlag("min_threads", "Smallest thread count in the default sweep.", 1)
	maxThreadsFlag = conf.NewIntFlag("max_threads", "Largest thread count in the default sweep. 0 means all usable CPUs.", 0)
	warmupFlag     = conf.NewDurationFlag("warmup", "Per-thread warmup budget before the start barrier.", 100*time.Millisecond)

	cpuidsFlag  = conf.NewSliceFlag("cpuids", "Explicit logical CPU ids to pin to, in assignment order. Overrides num_cpus.")
	numCPUsFlag = conf.NewIntFlag("num_cpus", "Cap on the number of usable CPUs. 0 means no cap.", 0)
	allowHTFlag = conf.NewBoolFlag("allow_hyperthreads", "Use sibling hyperthreads as separate participants.", false)

	noPinFlag      = conf.NewBoolFlag("no_pin", "Do not pin measurement threads to CPUs.", false)
	noBarrierFlag  = conf.NewBoolFlag("no_barrier", "Do not align thread start on the hot barrier.", false)
	dirtyUpperFlag = conf.NewBoolFlag("dirty_upper", "Dirty vector architectural state before every trial.", false)
	forceCalFlag   = conf.NewBoolFlag("force_tsc_calibrate", "Calibrate the counter with the sampling loop even when the hardware reports its frequency.", false)
)

func main() {
	conf.SetAppName(appName)
	conf.SetHelp("Measures per-core instruction throughput under varying concurrency to expose CPU frequency scaling.")
	errutil.Check(conf.ParseFlags())
	logrus.SetLevel(conf.LogLevel())

	if listFlag.Value() {
		report.ListWorkloads(os.Stdout, workloads.All(), func(w workloads.Workload) bool {
			return cpu.Supported(w.Requires)
		})
		return
	}

	runID := uuid.New()
	logrus.Infof("starting run %s", runID)

	clock, err := tsc.Calibrate(forceCalFlag.Value())
	errutil.Check(err)

	cpuIDs := usableCPUs()

	registers := msr.NewReader()
	defer registers.Close()
	msrOK := registers.Supported()

	printBanner(clock, cpuIDs, msrOK)

	specs := buildSpecs(cpuIDs)

	orch, err := runner.NewOrchestrator(runner.Config{
		Iterations: uint64(itersFlag.Value()),
		Warmup:     warmupFlag.Value(),
		Pin:        !noPinFlag.Value(),
		Barrier:    !noBarrierFlag.Value(),
		DirtyUpper: dirtyUpperFlag.Value(),
		UseAperf:   msrOK,
		CPUIDs:     cpuIDs,
		Clock:      clock,
		Registers:  registers,
	})
	errutil.Check(err)

	reporter := report.NewReporter(os.Stdout, clock, msrOK)
	errutil.Check(orch.Run(specs, reporter.Report))
}

// usableCPUs resolves the logical CPUs measurements may pin to: either the
// explicit cpuids list validated against the discovered topology, or the
// discovered set with sibling hyperthreads dropped and the num_cpus cap
// applied.
func usableCPUs() []int {
	threads, err := topo.Discover()
	errutil.CheckWithContext(err, "discovering CPU topology")

	if explicit := cpuidsFlag.Value(); len(explicit) > 0 {
		known := map[int]bool{}
		for _, id := range threads.IDs() {
			known[id] = true
		}
		ids := []int{}
		for _, raw := range explicit {
			id, err := strconv.Atoi(raw)
			if err != nil || !known[id] {
				errutil.Check(errors.Errorf("cpuids entry %q is not a logical CPU on this machine", raw))
			}
			ids = append(ids, id)
		}
		return ids
	}

	if !allowHTFlag.Value() {
		threads = threads.PhysicalOnly()
	}
	ids := threads.IDs()
	if limit := numCPUsFlag.Value(); limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

// buildSpecs resolves what to run: one explicit spec string, or the default
// sweep over the runnable catalog, optionally narrowed by the test flag.
func buildSpecs(cpuIDs []int) []runner.Spec {
	if str := specFlag.Value(); str != "" {
		spec, err := runner.ParseSpec(str)
		errutil.Check(err)
		return []runner.Spec{spec}
	}

	catalog := workloads.Runnable(cpu.Supported)
	if focus := testFlag.Value(); len(focus) > 0 {
		catalog = focusCatalog(focus)
	}

	minThreads := minThreadsFlag.Value()
	maxThreads := maxThreadsFlag.Value()
	if maxThreads == 0 {
		maxThreads = len(cpuIDs)
	}
	if minThreads < 1 || maxThreads < minThreads {
		errutil.Check(errors.Errorf("bad thread range [%d, %d]", minThreads, maxThreads))
	}

	return runner.DefaultSpecs(catalog, minThreads, maxThreads)
}

func focusCatalog(focus []string) []workloads.Workload {
	catalog := []workloads.Workload{}
	for _, id := range focus {
		w, err := workloads.Find(id)
		errutil.Check(err)
		if !cpu.Supported(w.Requires) {
			errutil.Check(errors.Errorf("workload %q needs CPU features this machine lacks", id))
		}
		catalog = append(catalog, w)
	}
	return catalog
}

func printBanner(clock *tsc.Clock, cpuIDs []int, msrOK bool) {
	logrus.Infof("CPU: %s", cpu.BrandString())
	logrus.Infof("counter frequency: %.1f MHz (%s)", clock.FrequencyMHz(), clock.Source())
	logrus.Infof("running as root: %v", os.Geteuid() == 0)
	logrus.Infof("APERF/MPERF sampling: %v", msrOK)
	logrus.Infof("thread pinning: %v", !noPinFlag.Value())
	logrus.Infof("start barrier: %v", !noBarrierFlag.Value())
	logrus.Infof("usable CPUs (%d): %v", len(cpuIDs), cpuIDs)
	logrus.Infof("hyperthreads per core: %d (siblings allowed: %v)", cpu.ThreadsPerCore(), allowHTFlag.Value())
}
