//go:build !amd64

package tsc

// Now falls back to the monotonic OS clock on architectures without an
// accessible free-running counter. Ticks equal nanoseconds, so the sampling
// calibration converges to a rate of 1.0 ticks per nanosecond. Precision
// claims hold only on amd64.
func Now() uint64 {
	return monotonicNanos()
}
