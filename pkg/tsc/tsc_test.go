package tsc

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCalibrateFromSamples(t *testing.T) {
	const trueRate = uint64(3_000_000_000)

	Convey("When reducing synthetic calibration samples", t, func() {
		rng := rand.New(rand.NewSource(42))

		jittered := func() uint64 {
			// Up to ±0.5% of jitter around the true rate.
			jitter := int64(rng.Intn(int(trueRate/100))) - int64(trueRate/200)
			return uint64(int64(trueRate) + jitter)
		}

		Convey("With outliers polluting the discarded warmup half", func() {
			samples := make([]uint64, 2*calibrationSamples)
			for i := 0; i < calibrationSamples; i++ {
				if i%5 == 0 {
					// 20% of warmup samples are wildly wrong.
					samples[i] = trueRate * 10
				} else {
					samples[i] = jittered()
				}
			}
			for i := calibrationSamples; i < 2*calibrationSamples; i++ {
				samples[i] = jittered()
			}

			rate, err := calibrateFromSamples(samples)
			So(err, ShouldBeNil)
			So(float64(rate), ShouldAlmostEqual, float64(trueRate), float64(trueRate)/100)
		})

		Convey("With tail outliers inside the kept half, the trimmed mean rejects them", func() {
			samples := make([]uint64, 2*calibrationSamples)
			for i := range samples {
				samples[i] = jittered()
			}
			// A handful of scheduling spikes in the measured half.
			samples[calibrationSamples] = trueRate * 100
			samples[calibrationSamples+1] = trueRate / 100
			samples[2*calibrationSamples-1] = trueRate * 50

			rate, err := calibrateFromSamples(samples)
			So(err, ShouldBeNil)
			So(float64(rate), ShouldAlmostEqual, float64(trueRate), float64(trueRate)/100)
		})

		Convey("An odd or tiny sample count is rejected", func() {
			_, err := calibrateFromSamples(make([]uint64, 7))
			So(err, ShouldNotBeNil)

			_, err = calibrateFromSamples(make([]uint64, 4))
			So(err, ShouldNotBeNil)
		})

		Convey("All-zero samples cannot produce a clock", func() {
			_, err := calibrateFromSamples(make([]uint64, 2*calibrationSamples))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCalibrate(t *testing.T) {
	Convey("When forcing the sampling calibration loop", t, func() {
		clock, err := Calibrate(true)
		So(err, ShouldBeNil)

		Convey("The tick rate is strictly positive", func() {
			So(clock.TicksPerNanosecond(), ShouldBeGreaterThan, 0.0)
			So(clock.Source(), ShouldEqual, "calibration loop")
		})

		Convey("Conversions are consistent with the rate", func() {
			So(clock.ToNanos(1000), ShouldAlmostEqual, 1000/clock.TicksPerNanosecond(), 1e-6)
		})
	})
}

func TestNowIsMonotonicallyNondecreasing(t *testing.T) {
	Convey("Consecutive counter reads never go backwards", t, func() {
		violations := 0
		prev := Now()
		for i := 0; i < 100000; i++ {
			cur := Now()
			if cur < prev {
				violations++
			}
			prev = cur
		}
		So(violations, ShouldEqual, 0)
	})
}
