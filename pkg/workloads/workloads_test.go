package workloads

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/freqbench/freqbench/pkg/cpu"
)

func TestCatalog(t *testing.T) {
	Convey("The catalog", t, func() {
		Convey("Find returns entries by exact ID", func() {
			w, err := Find("scalar_iadd")
			So(err, ShouldBeNil)
			So(w.ID, ShouldEqual, "scalar_iadd")
			So(w.Run, ShouldNotBeNil)
		})

		Convey("Find rejects unknown IDs", func() {
			_, err := Find("avx1024_iadd")
			So(err, ShouldNotBeNil)
		})

		Convey("All returns a copy the caller can mangle safely", func() {
			catalog := All()
			So(len(catalog), ShouldBeGreaterThan, 0)
			catalog[0].ID = "mangled"
			w, err := Find(all[0].ID)
			So(err, ShouldBeNil)
			So(w.ID, ShouldNotEqual, "mangled")
		})

		Convey("Runnable keeps only entries whose requirements pass", func() {
			none := Runnable(func(m cpu.Mask) bool { return len(m) == 0 })
			for _, w := range none {
				So(len(w.Requires), ShouldEqual, 0)
			}

			everything := Runnable(func(cpu.Mask) bool { return true })
			So(len(everything), ShouldEqual, len(All()))
		})
	})
}

func TestWorkloadsRun(t *testing.T) {
	Convey("Every baseline workload runs for its iteration count", t, func() {
		for _, w := range All() {
			if len(w.Requires) > 0 && !cpu.Supported(w.Requires) {
				continue
			}
			// A crash or hang here is a catalog bug.
			w.Run(1000)
		}
		So(true, ShouldBeTrue)
	})

	Convey("DirtyUpper is callable as a pre-trial hook", t, func() {
		So(DirtyUpper, ShouldNotPanic)
	})
}
