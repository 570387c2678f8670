//go:build amd64

package tsc

// rdtsc reads the time stamp counter between two LFENCE instructions so
// neither the surrounding workload nor the read itself can be reordered
// across the measurement boundary. Implemented in rdtsc_amd64.s.
func rdtsc() uint64

// Now returns the current value of the free-running counter.
func Now() uint64 {
	return rdtsc()
}
