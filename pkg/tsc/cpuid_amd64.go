//go:build amd64

package tsc

import (
	"github.com/sirupsen/logrus"

	"github.com/freqbench/freqbench/pkg/cpu"
)

// cpuidRaw executes the CPUID instruction for the given leaf and subleaf.
// Implemented in cpuid_amd64.s.
func cpuidRaw(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)

// ticksPerSecondFromHardware derives the nominal counter frequency from the
// CPUID time stamp counter leaf, per Intel SDM Vol3 "Determining the
// Processor Base Frequency":
//
//	nominal TSC Hz = CPUID.15H.ECX * CPUID.15H.EBX / CPUID.15H.EAX
//
// Some client parts report a zero crystal frequency in ECX; for the known
// Skylake and Kabylake models the crystal is documented as 24 MHz. Returns 0
// when no descriptor is available, which sends the caller to the sampling
// loop.
func ticksPerSecondFromHardware() uint64 {
	maxLeaf, _, _, _ := cpuidRaw(0, 0)
	if maxLeaf < 0x15 {
		logrus.Debugf("CPUID highest leaf 0x%x does not include the TSC leaf", maxLeaf)
		return 0
	}

	eax, ebx, ecx, _ := cpuidRaw(0x15, 0)
	if eax == 0 || ebx == 0 {
		return 0
	}
	if ecx != 0 {
		return uint64(ecx) * uint64(ebx) / uint64(eax)
	}

	family, model := cpu.FamilyModel()
	if family == 6 {
		switch model {
		case 0x4E, 0x5E, 0x8E, 0x9E:
			// Skylake client or Kabylake: 24 MHz crystal clock.
			return 24000000 * uint64(ebx) / uint64(eax)
		}
	}

	// Last resort before the sampling loop: the feature library's own
	// derivation of the nominal frequency.
	if hz := cpu.NominalHz(); hz > 0 {
		return uint64(hz)
	}
	return 0
}
