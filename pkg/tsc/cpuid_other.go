//go:build !amd64

package tsc

// ticksPerSecondFromHardware has no hardware frequency descriptor to consult
// off amd64; the sampling loop handles calibration.
func ticksPerSecondFromHardware() uint64 {
	return 0
}
