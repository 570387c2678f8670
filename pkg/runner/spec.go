package runner

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/freqbench/freqbench/pkg/workloads"
)

// Spec contains the information needed to run one test: an ordered list of
// workloads, one per participating thread. The same workload may repeat to
// model N threads doing the same thing.
type Spec struct {
	Name        string
	Description string
	Threads     []workloads.Workload
}

// Count returns how many threads this spec uses.
func (s *Spec) Count() int {
	return len(s.Threads)
}

// String returns the comma-joined workload ids, for logging.
func (s *Spec) String() string {
	ids := make([]string, 0, len(s.Threads))
	for _, w := range s.Threads {
		ids = append(ids, w.ID)
	}
	return strings.Join(ids, ",")
}

// homogeneous builds a spec with threadCount copies of one workload.
func homogeneous(w workloads.Workload, threadCount int) Spec {
	spec := Spec{Name: w.ID, Description: w.Description}
	for i := 0; i < threadCount; i++ {
		spec.Threads = append(spec.Threads, w)
	}
	return spec
}

// DefaultSpecs builds the full sweep: for every thread count T in
// [minThreads, maxThreads] and every supplied workload, a spec with T copies
// of that workload. The caller has already filtered the catalog down to
// runnable entries.
func DefaultSpecs(catalog []workloads.Workload, minThreads, maxThreads int) []Spec {
	specs := []Spec{}
	for threadCount := minThreads; threadCount <= maxThreads; threadCount++ {
		for _, w := range catalog {
			specs = append(specs, homogeneous(w, threadCount))
		}
	}
	return specs
}

// ParseSpec builds one spec from a specification string of the form
// "id[/count],id[/count],...", e.g. "scalar_iadd/2,scalar_imul" runs two
// threads of serial adds against one thread of multiplies.
func ParseSpec(str string) (Spec, error) {
	spec := Spec{Name: str, Description: "<multiple descriptions>"}
	for _, elem := range strings.Split(str, ",") {
		halves := strings.Split(elem, "/")
		if len(halves) > 2 {
			return Spec{}, errors.Errorf("bad spec syntax in element %q", elem)
		}

		count := 1
		if len(halves) == 2 {
			parsed, err := strconv.Atoi(halves[1])
			if err != nil || parsed < 1 {
				return Spec{}, errors.Errorf("bad thread count in spec element %q", elem)
			}
			count = parsed
		}

		w, err := workloads.Find(halves[0])
		if err != nil {
			return Spec{}, err
		}
		for i := 0; i < count; i++ {
			spec.Threads = append(spec.Threads, w)
		}
	}
	return spec, nil
}
