// Package runner executes measurement specs: it spawns one pinned thread per
// spec entry, synchronizes the threads on hot barriers, runs the marginal-cost
// timing protocol on each, and aggregates per-spec results with overlap
// diagnostics.
package runner

import (
	"time"

	"github.com/pkg/errors"

	"github.com/freqbench/freqbench/pkg/msr"
	"github.com/freqbench/freqbench/pkg/tsc"
)

const (
	// tries is the number of marginal-cost trials per pass. Odd, so the
	// median is an actual sample.
	tries = 101

	// warmupPasses is the number of full extra passes executed and discarded
	// before the one whose samples are kept.
	warmupPasses = 3

	// warmupChunk is the iteration count per warmup probe of the workload.
	warmupChunk = 100
)

// Config carries the run-wide knobs shared by every spec.
type Config struct {
	// Iterations is the base iteration count N; each trial times the
	// difference between a 2N-iteration call and an N-iteration call.
	// Must be a positive multiple of 100.
	Iterations uint64

	// Warmup is the wall-time budget each thread spends exercising its
	// workload before the start barrier.
	Warmup time.Duration

	// Pin restricts each measurement thread to its own logical CPU.
	Pin bool

	// Barrier aligns thread start on a hot barrier. Disabling it is only
	// useful to demonstrate how unaligned runs skew results.
	Barrier bool

	// DirtyUpper runs the vector-state-dirtying hook before every trial.
	DirtyUpper bool

	// UseAperf samples the APERF/MPERF register pair around each trial pass.
	UseAperf bool

	// CPUIDs lists the logical CPUs available for pinning, in assignment
	// order. Thread i of a spec is pinned to CPUIDs[i].
	CPUIDs []int

	// Clock converts counter ticks to nanoseconds. Calibrated once at
	// process start.
	Clock *tsc.Clock

	// Registers reads model-specific registers when UseAperf is set.
	Registers msr.RegisterReader
}

// Validate rejects configurations the protocol cannot run with. Called once
// before any thread is spawned; a bad config never partially executes.
func (c *Config) Validate() error {
	if c.Iterations == 0 || c.Iterations%100 != 0 {
		return errors.Errorf("iteration count must be a positive multiple of 100, got %d", c.Iterations)
	}
	if c.Clock == nil {
		return errors.New("config needs a calibrated clock")
	}
	if c.Pin && len(c.CPUIDs) == 0 {
		return errors.New("pinning requested but no CPUs available")
	}
	if c.UseAperf && c.Registers == nil {
		return errors.New("aperf sampling requested but no register reader supplied")
	}
	return nil
}
