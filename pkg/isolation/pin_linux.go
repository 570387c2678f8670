//go:build linux

// Package isolation pins measurement threads to logical CPUs. Pinning is a
// resource-affinity optimization, not a correctness requirement: without it
// the scheduler may migrate participants mid-measurement, which adds noise
// but does not invalidate the protocol.
package isolation

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to the given logical CPU. The
// caller must have locked its goroutine to the thread first
// (runtime.LockOSThread) or the affinity lands on an arbitrary thread.
func PinToCPU(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Wrapf(err, "could not pin to CPU %d", cpuID)
	}
	return nil
}
