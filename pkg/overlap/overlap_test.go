package overlap

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func ivs(pairs ...[2]uint64) []Interval {
	out := make([]Interval, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Interval{Start: p[0], End: p[1]})
	}
	return out
}

func conc(pairs ...[2]uint64) [2]uint64 {
	durations, union := Concurrency(ivs(pairs...))
	return [2]uint64{durations, union}
}

func TestConcurrency(t *testing.T) {
	Convey("Concurrency should sum durations and union time", t, func() {
		Convey("Empty input returns (0, 0)", func() {
			So(conc(), ShouldResemble, [2]uint64{0, 0})
		})

		Convey("Nested intervals", func() {
			So(conc([2]uint64{1, 11}, [2]uint64{2, 4}), ShouldResemble, [2]uint64{12, 10})
		})

		Convey("Input order does not matter", func() {
			So(conc([2]uint64{2, 4}, [2]uint64{1, 11}), ShouldResemble, [2]uint64{12, 10})
		})

		Convey("Disjoint intervals have equal sums", func() {
			So(conc([2]uint64{99, 100}, [2]uint64{1, 2}), ShouldResemble, [2]uint64{2, 2})
			So(conc([2]uint64{5, 6}, [2]uint64{100, 200}, [2]uint64{50, 60}), ShouldResemble, [2]uint64{111, 111})
		})

		Convey("Partially overlapping intervals", func() {
			So(conc([2]uint64{5, 6}, [2]uint64{10, 110}, [2]uint64{60, 70}), ShouldResemble, [2]uint64{111, 101})
		})

		Convey("Touching endpoints do not overlap", func() {
			So(conc([2]uint64{1, 2}, [2]uint64{2, 3}, [2]uint64{3, 4}), ShouldResemble, [2]uint64{3, 3})
			So(conc([2]uint64{3, 4}, [2]uint64{1, 2}, [2]uint64{2, 3}), ShouldResemble, [2]uint64{3, 3})
		})

		Convey("Degenerate zero-length intervals contribute nothing", func() {
			So(conc([2]uint64{1, 1}, [2]uint64{10, 10}, [2]uint64{10, 10}, [2]uint64{10, 10}),
				ShouldResemble, [2]uint64{0, 0})
		})
	})
}

func TestConcRatio(t *testing.T) {
	Convey("ConcRatio should normalize overlap to [0, 1]", t, func() {
		Convey("Zero intervals is undefined", func() {
			So(math.IsNaN(ConcRatio(nil)), ShouldBeTrue)
		})

		Convey("A single interval is 1.0 by convention", func() {
			So(ConcRatio(ivs([2]uint64{55, 65})), ShouldAlmostEqual, 1.0)
		})

		Convey("Full overlap is 1.0 for any N", func() {
			So(ConcRatio(ivs([2]uint64{55, 65}, [2]uint64{55, 65})), ShouldAlmostEqual, 1.0)
		})

		Convey("Disjoint intervals are 0.0, even when touching", func() {
			So(ConcRatio(ivs([2]uint64{55, 65}, [2]uint64{65, 75})), ShouldAlmostEqual, 0.0)
		})

		Convey("Three nested overlapping intervals", func() {
			So(ConcRatio(ivs([2]uint64{0, 10}, [2]uint64{0, 3}, [2]uint64{0, 7})), ShouldAlmostEqual, 0.5)
		})

		Convey("Degenerate tails drag the ratio down", func() {
			r := ConcRatio(ivs(
				[2]uint64{0, 10}, [2]uint64{0, 3}, [2]uint64{0, 7},
				[2]uint64{11, 11}, [2]uint64{11, 11}, [2]uint64{11, 11}))
			So(r, ShouldAlmostEqual, 0.2)
		})
	})
}

func nconc(outer, inner []Interval) [2]uint64 {
	weighted, total := NestedConcurrency(outer, inner)
	return [2]uint64{weighted, total}
}

func TestNestedConcurrency(t *testing.T) {
	Convey("NestedConcurrency should weight inner time by active outer count", t, func() {
		Convey("Empty inner set returns (0, 0)", func() {
			So(nconc(nil, nil), ShouldResemble, [2]uint64{0, 0})
		})

		Convey("Identical single intervals", func() {
			So(nconc(ivs([2]uint64{0, 1}), ivs([2]uint64{0, 1})), ShouldResemble, [2]uint64{1, 1})
		})

		Convey("Inner fully covered by one outer", func() {
			So(nconc(ivs([2]uint64{0, 10}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})),
				ShouldResemble, [2]uint64{2, 2})
		})

		Convey("Inner fully outside the outer gives zero weight but nonzero total", func() {
			So(nconc(ivs([2]uint64{5, 10}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})),
				ShouldResemble, [2]uint64{0, 2})
		})

		Convey("Two covering outers double the weight", func() {
			So(nconc(ivs([2]uint64{0, 10}, [2]uint64{0, 2}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})),
				ShouldResemble, [2]uint64{4, 2})
		})

		Convey("A partially covering second outer adds partial weight", func() {
			So(nconc(ivs([2]uint64{0, 10}, [2]uint64{0, 1}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})),
				ShouldResemble, [2]uint64{3, 2})
		})
	})
}

func TestNConcRatio(t *testing.T) {
	Convey("NConcRatio should normalize over the outer count", t, func() {
		Convey("No outer intervals returns 0", func() {
			So(NConcRatio(nil, ivs([2]uint64{0, 1})), ShouldAlmostEqual, 0.0)
		})

		Convey("A single outer interval returns the raw quotient", func() {
			So(NConcRatio(ivs([2]uint64{0, 10}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})), ShouldAlmostEqual, 1.0)
			So(NConcRatio(ivs([2]uint64{5, 10}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})), ShouldAlmostEqual, 0.0)
		})

		Convey("Two fully covering outers map to 1.0", func() {
			So(NConcRatio(ivs([2]uint64{0, 10}, [2]uint64{0, 2}), ivs([2]uint64{0, 1}, [2]uint64{1, 2})),
				ShouldAlmostEqual, 1.0)
		})
	})
}

func TestRemap(t *testing.T) {
	Convey("remap should linearly map between ranges", t, func() {
		So(remap(0.2, 0, 1, 100, 200), ShouldAlmostEqual, 120)
	})
}
