// Package cpu exposes the detected hardware capability surface consumed by
// the workload catalog and the clock calibrator.
package cpu

import (
	"github.com/klauspost/cpuid/v2"
)

// Mask is the ordered set of CPU features a workload requires. A workload is
// runnable iff its mask is a subset of the detected feature set.
type Mask []cpuid.FeatureID

// Supported returns true iff every feature in the mask is present on this CPU.
func Supported(mask Mask) bool {
	return cpuid.CPU.Supports(mask...)
}

// BrandString returns the CPU vendor brand string.
func BrandString() string {
	return cpuid.CPU.BrandName
}

// FamilyModel returns the CPU family and model identifiers. Used to key the
// hard-coded crystal-clock fallback table during clock calibration.
func FamilyModel() (family, model int) {
	return cpuid.CPU.Family, cpuid.CPU.Model
}

// NominalHz returns the nominal TSC frequency reported by the hardware
// frequency descriptor (CPUID leaf 15H and friends), or 0 when unavailable.
func NominalHz() int64 {
	return cpuid.CPU.Hz
}

// ThreadsPerCore returns the number of hyperthreads per physical core.
func ThreadsPerCore() int {
	return cpuid.CPU.ThreadsPerCore
}
