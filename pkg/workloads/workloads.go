// Package workloads is the data-driven catalog of timed instruction
// sequences. Every entry's Run function has a fixed per-call overhead and a
// cost strictly linear in the iteration count, which the measurement loop
// relies on for marginal-cost subtraction. Entries declare the CPU features
// they need; the orchestrator only schedules entries whose requirements are a
// subset of the detected feature set.
package workloads

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"

	"github.com/freqbench/freqbench/pkg/cpu"
)

// Workload is one catalog entry.
type Workload struct {
	ID          string
	Description string
	Requires    cpu.Mask
	Run         func(iters uint64)
}

// all is the ordered registry. Order is presentation order in reports.
var all = []Workload{
	{"nop_loop", "Empty counted loop", nil, nopLoop},
	{"scalar_iadd", "Scalar integer serial adds", nil, scalarIAdd},
	{"scalar_iadd_t", "Scalar integer parallel adds", nil, scalarIAddParallel},
	{"scalar_imul", "Scalar integer serial multiplies", nil, scalarIMul},
	{"scalar_popcnt", "Scalar population counts", cpu.Mask{cpuid.POPCNT}, scalarPopcnt},
	{"scalar_fma", "Scalar serial DP fused multiply-adds", cpu.Mask{cpuid.FMA3}, scalarFMA},
	{"scalar_fma_t", "Scalar parallel DP fused multiply-adds", cpu.Mask{cpuid.FMA3}, scalarFMAParallel},
	{"mov_chain", "Register-to-register move chain", nil, movChain},
}

// All returns the ordered catalog.
func All() []Workload {
	out := make([]Workload, len(all))
	copy(out, all)
	return out
}

// Find returns the workload that exactly matches the given ID.
func Find(id string) (Workload, error) {
	for _, w := range all {
		if w.ID == id {
			return w, nil
		}
	}
	return Workload{}, errors.Errorf("unknown workload %q", id)
}

// Runnable filters the catalog down to entries whose feature requirements
// are met, using the supplied predicate. Pass cpu.Supported for the real
// hardware capability set.
func Runnable(supported func(cpu.Mask) bool) []Workload {
	out := []Workload{}
	for _, w := range all {
		if supported(w.Requires) {
			out = append(out, w)
		}
	}
	return out
}
