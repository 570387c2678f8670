package topo

// ThreadSet represents a subset of the available hyperthreads on a system.
type ThreadSet []Thread

// NewThreadSet returns a newly allocated thread set.
func NewThreadSet() ThreadSet {
	return []Thread{}
}

// Filter returns a newly allocated thread set containing all elements
// from this set that match the supplied predicate.
func (s ThreadSet) Filter(by func(Thread) bool) ThreadSet {
	res := ThreadSet{}
	for _, t := range s {
		if by(t) {
			res = append(res, t)
		}
	}
	return res
}

// IDs returns the ordered logical CPU ids of the threads in this set.
func (s ThreadSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for _, t := range s {
		ids = append(ids, t.ID())
	}
	return ids
}

// PhysicalOnly returns a newly allocated thread set that keeps only the first
// hyperthread of each physical core, preserving discovery order. Running two
// participants on sibling hyperthreads of one core measures contention for
// the core's execution ports, not frequency scaling, so the orchestrator
// filters siblings out by default.
func (s ThreadSet) PhysicalOnly() ThreadSet {
	type coreKey struct{ socket, core int }
	seen := map[coreKey]bool{}
	return s.Filter(func(t Thread) bool {
		key := coreKey{t.Socket(), t.Core()}
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
