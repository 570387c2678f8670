// Package tsc calibrates the free-running hardware cycle counter against real
// time and exposes fence-protected reads of it. All timed measurements in the
// harness are taken in counter ticks and converted to nanoseconds through a
// Clock, which is computed once at process start and passed by reference into
// every component that needs it.
package tsc

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// calibrationSamples is the number of instantaneous estimates kept after
	// warmup. Odd, so order statistics over them are well defined.
	calibrationSamples = 101

	// calibrationDelay is the OS-clock window each instantaneous estimate
	// measures counter ticks over.
	calibrationDelay = 10 * time.Microsecond
)

// Clock converts free-running counter ticks to wall time. Immutable after
// calibration.
type Clock struct {
	ticksPerNano float64
	source       string
}

// NewClock builds a clock from an externally known tick rate, bypassing
// calibration. ticksPerNano must be strictly positive.
func NewClock(ticksPerNano float64, source string) *Clock {
	if ticksPerNano <= 0 {
		panic("clock tick rate must be strictly positive")
	}
	return &Clock{ticksPerNano: ticksPerNano, source: source}
}

// TicksPerNanosecond returns the calibrated tick rate. Strictly positive.
func (c *Clock) TicksPerNanosecond() float64 {
	return c.ticksPerNano
}

// ToNanos converts a counter-tick delta to nanoseconds.
func (c *Clock) ToNanos(ticks uint64) float64 {
	return float64(ticks) / c.ticksPerNano
}

// FrequencyMHz returns the counter frequency in MHz, for reporting.
func (c *Clock) FrequencyMHz() float64 {
	return c.ticksPerNano * 1000
}

// Source describes where the tick rate came from, for reporting.
func (c *Clock) Source() string {
	return c.source
}

// Calibrate determines the counter's tick rate. It prefers the hardware
// frequency descriptor when available and not overridden; otherwise it runs
// the sampling loop. The process cannot proceed without a clock, so callers
// treat an error as fatal.
func Calibrate(forceSampling bool) (*Clock, error) {
	if !forceSampling {
		if hz := ticksPerSecondFromHardware(); hz > 0 {
			logrus.Debugf("counter frequency %d Hz from hardware descriptor", hz)
			return &Clock{ticksPerNano: float64(hz) / 1e9, source: "cpuid leaf 0x15"}, nil
		}
		logrus.Debug("no hardware frequency descriptor, falling back to calibration loop")
	}

	samples := make([]uint64, 2*calibrationSamples)
	for i := range samples {
		samples[i] = sampleTicksPerSecond()
	}

	hz, err := calibrateFromSamples(samples)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("counter frequency %d Hz from calibration loop", hz)
	return &Clock{ticksPerNano: float64(hz) / 1e9, source: "calibration loop"}, nil
}

// sampleTicksPerSecond measures counter ticks elapsed over one fixed OS-clock
// delay and scales the result to ticks per second.
func sampleTicksPerSecond() uint64 {
	nsBefore := monotonicNanos()
	ticksBefore := Now()
	deadline := nsBefore + uint64(calibrationDelay.Nanoseconds())
	for monotonicNanos() < deadline {
	}
	nsAfter := monotonicNanos()
	ticksAfter := Now()
	return (ticksAfter - ticksBefore) * 1e9 / (nsAfter - nsBefore)
}

// calibrateFromSamples reduces the raw instantaneous estimates to a single
// rate: the first half is discarded as warmup, the second half is sorted, and
// the middle (third) quintile is averaged. The trimmed mean rejects
// scheduling-induced outliers on either tail.
func calibrateFromSamples(samples []uint64) (uint64, error) {
	if len(samples) < 10 || len(samples)%2 != 0 {
		return 0, errors.Errorf("calibration needs an even sample count of at least 10, got %d", len(samples))
	}

	half := len(samples) / 2
	kept := make([]uint64, half)
	copy(kept, samples[half:])
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })

	quintile := half / 5
	if quintile == 0 {
		return 0, errors.Errorf("calibration quintile is empty for %d samples", len(samples))
	}

	sum := uint64(0)
	for _, s := range kept[2*quintile : 3*quintile] {
		sum += s
	}
	rate := sum / uint64(quintile)
	if rate == 0 {
		return 0, errors.New("calibration produced a zero tick rate")
	}
	return rate, nil
}

// begin anchors the monotonic clock readings used by the calibration loop.
var begin = time.Now()

func monotonicNanos() uint64 {
	return uint64(time.Since(begin).Nanoseconds())
}
